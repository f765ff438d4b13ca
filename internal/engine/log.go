package engine

import (
	"context"
	"sync"
	"time"

	"github.com/yanun0323/logs"
)

// Severity classifies an execution-log entry.
type Severity uint8

const (
	_severity_beg Severity = iota
	SeverityInfo
	SeverityAction
	SeveritySuccess
	SeverityError
	_severity_end
)

func (s Severity) IsAvailable() bool {
	return s > _severity_beg && s < _severity_end
}

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityAction:
		return "action"
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is one timestamped record of an evaluation or action event.
type Entry struct {
	Time     time.Time
	RuleID   string
	Message  string
	Severity Severity
}

// Sink receives every appended entry, e.g. for persistent audit.
// Write runs on a forwarder goroutine, never on the evaluation path,
// so a slow sink delays persistence only.
type Sink interface {
	Write(algorithmID string, entry Entry)
}

// sinkQueueSize bounds entries buffered for the sink forwarder.
const sinkQueueSize = 256

// ExecutionLog is the append-only record consumed by the engine's
// callers. One log lives exactly as long as its algorithm.
type ExecutionLog struct {
	mu          sync.Mutex
	entries     []Entry
	sink        Sink
	algorithmID string
	sinkCh      chan Entry
}

// NewExecutionLog builds an empty log. sink may be nil.
func NewExecutionLog(sink Sink, algorithmID string) *ExecutionLog {
	l := &ExecutionLog{sink: sink, algorithmID: algorithmID}
	if sink != nil {
		l.sinkCh = make(chan Entry, sinkQueueSize)
	}
	return l
}

// Append records one entry. A zero Time is stamped with now. The sink
// hand-off never blocks; with no forwarder draining, a full buffer
// drops the entry from the sink only, never from the in-memory log.
func (l *ExecutionLog) Append(entry Entry) {
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	if l.sinkCh != nil {
		select {
		case l.sinkCh <- entry:
		default:
			logs.Warnf("sink queue full, entry for rule %q dropped from audit", entry.RuleID)
		}
	}
}

// Forward drains appended entries into the sink until ctx ends, then
// flushes whatever is still buffered. Run it on its own goroutine.
func (l *ExecutionLog) Forward(ctx context.Context) {
	if l.sinkCh == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case entry := <-l.sinkCh:
					l.sink.Write(l.algorithmID, entry)
				default:
					return
				}
			}
		case entry := <-l.sinkCh:
			l.sink.Write(l.algorithmID, entry)
		}
	}
}

// All returns a copy of the entries in append order.
func (l *ExecutionLog) All() []Entry {
	l.mu.Lock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	l.mu.Unlock()
	return out
}

// Len returns the number of entries.
func (l *ExecutionLog) Len() int {
	l.mu.Lock()
	n := len(l.entries)
	l.mu.Unlock()
	return n
}
