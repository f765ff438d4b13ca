package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	algoIDs []string
	entries []Entry
}

func (s *recordingSink) Write(algorithmID string, entry Entry) {
	s.mu.Lock()
	s.algoIDs = append(s.algoIDs, algorithmID)
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
}

func (s *recordingSink) written() ([]string, []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.algoIDs...), append([]Entry(nil), s.entries...)
}

func TestLogAppendOrder(t *testing.T) {
	log := NewExecutionLog(nil, "algo-1")

	log.Append(Entry{RuleID: "a", Message: "first", Severity: SeverityInfo})
	log.Append(Entry{RuleID: "b", Message: "second", Severity: SeverityAction})
	log.Append(Entry{RuleID: "b", Message: "third", Severity: SeveritySuccess})

	entries := log.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0].Message)
	assert.Equal(t, "second", entries[1].Message)
	assert.Equal(t, "third", entries[2].Message)
	assert.Equal(t, 3, log.Len())
}

func TestLogStampsZeroTime(t *testing.T) {
	log := NewExecutionLog(nil, "algo-1")

	before := time.Now()
	log.Append(Entry{Message: "stamped", Severity: SeverityInfo})

	stamped := time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)
	log.Append(Entry{Time: stamped, Message: "kept", Severity: SeverityInfo})

	entries := log.All()
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Time.Before(before))
	assert.True(t, entries[1].Time.Equal(stamped))
}

func TestLogForwardsToSink(t *testing.T) {
	sink := &recordingSink{}
	log := NewExecutionLog(sink, "algo-7")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go log.Forward(ctx)

	log.Append(Entry{RuleID: "sl", Message: "fired", Severity: SeverityAction})

	require.Eventually(t, func() bool {
		_, entries := sink.written()
		return len(entries) == 1
	}, time.Second, 5*time.Millisecond)

	ids, entries := sink.written()
	assert.Equal(t, "algo-7", ids[0])
	assert.Equal(t, "fired", entries[0].Message)
	assert.False(t, entries[0].Time.IsZero(), "sink must see the stamped entry")
}

func TestLogAppendNeverBlocksOnSink(t *testing.T) {
	// No forwarder draining and a tiny buffer equivalent: append far
	// past the sink queue capacity and the call must still return.
	sink := &recordingSink{}
	log := NewExecutionLog(sink, "algo-1")

	done := make(chan struct{})
	go func() {
		for i := 0; i < sinkQueueSize*2; i++ {
			log.Append(Entry{Message: "burst", Severity: SeverityInfo})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("append blocked on an undrained sink")
	}

	// Every entry stays in the in-memory log regardless of sink drops.
	assert.Equal(t, sinkQueueSize*2, log.Len())
}

func TestForwardFlushesOnContextEnd(t *testing.T) {
	sink := &recordingSink{}
	log := NewExecutionLog(sink, "algo-2")

	log.Append(Entry{Message: "before", Severity: SeverityInfo})
	log.Append(Entry{Message: "after", Severity: SeverityInfo})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		log.Forward(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forwarder did not exit on context end")
	}

	_, entries := sink.written()
	require.Len(t, entries, 2)
	assert.Equal(t, "before", entries[0].Message)
	assert.Equal(t, "after", entries[1].Message)
}

func TestLogAllReturnsCopy(t *testing.T) {
	log := NewExecutionLog(nil, "algo-1")
	log.Append(Entry{Message: "original", Severity: SeverityInfo})

	entries := log.All()
	entries[0].Message = "mutated"

	assert.Equal(t, "original", log.All()[0].Message)
}

func TestSeverityString(t *testing.T) {
	for severity, want := range map[Severity]string{
		SeverityInfo:    "info",
		SeverityAction:  "action",
		SeveritySuccess: "success",
		SeverityError:   "error",
		Severity(99):    "unknown",
	} {
		assert.Equal(t, want, severity.String())
	}
	assert.True(t, SeverityAction.IsAvailable())
	assert.False(t, Severity(99).IsAvailable())
}
