// Package engine evaluates user-selected trigger rules against live
// ticks for one open position and dispatches protective-order actions.
// One Engine runs one algorithm; a Runner guarantees only one is
// running system-wide.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/logs"

	"main/internal/bus"
	"main/internal/executor"
	"main/internal/model"
	"main/internal/obs"
	"main/pkg/exception"
)

// Status is the algorithm lifecycle state. Terminal states are final.
type Status uint8

const (
	StatusIdle Status = iota
	StatusRunning
	StatusCompleted
	StatusError
	StatusCancelled
)

// Terminal reports whether no transition leaves the status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ActionExecutor is the engine's port to the order backend.
type ActionExecutor interface {
	Execute(ctx context.Context, action model.Action, position model.PositionContext) (executor.Outcome, error)
}

// Config controls one engine instance.
type Config struct {
	QueueCapacity int
	Sink          Sink
}

func (cfg Config) withDefaults() Config {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 1024
	}
	return cfg
}

type ruleState struct {
	rule model.Rule
	// busy marks a dispatch in flight so a tick burst cannot trigger
	// the same rule again before its result is recorded.
	busy bool
}

// Engine holds one algorithm: an ordered rule list, the position
// context, and the status state machine. Ticks are evaluated strictly
// in arrival order by a single goroutine fed from a bounded queue.
type Engine struct {
	cfg  Config
	exec ActionExecutor

	mu          sync.Mutex
	id          string
	rules       []ruleState
	position    model.PositionContext
	status      Status
	startedAt   time.Time
	completedAt time.Time
	err         error
	log         *ExecutionLog
	generation  uint64

	queue  *bus.TickQueue
	ctx    context.Context
	cancel context.CancelFunc
}

// Snapshot is a point-in-time copy of the algorithm for display.
type Snapshot struct {
	ID          string
	Status      Status
	StartedAt   time.Time
	CompletedAt time.Time
	Err         error
	Rules       []model.Rule
	Log         []Entry
}

// New builds an idle engine.
func New(cfg Config, exec ActionExecutor) *Engine {
	return &Engine{
		cfg:    cfg.withDefaults(),
		exec:   exec,
		status: StatusIdle,
	}
}

// Start transitions idle → running with a fresh snapshot of the rule
// set (every Executed latch cleared) and begins consuming ticks.
func (e *Engine) Start(ctx context.Context, rules []model.Rule, position model.PositionContext) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusIdle {
		return exception.ErrAlgoAlreadyRunning
	}
	if len(rules) == 0 {
		return exception.ErrAlgoNoRules
	}
	if position.Quantity <= 0 || !position.BuyPrice.IsPositive() {
		return exception.ErrAlgoInvalidPosition
	}

	e.id = uuid.NewString()
	e.rules = make([]ruleState, 0, len(rules))
	for _, rule := range rules {
		e.rules = append(e.rules, ruleState{rule: rule.Fresh()})
	}
	e.position = position
	e.status = StatusRunning
	e.startedAt = time.Now()
	e.generation++
	e.log = NewExecutionLog(e.cfg.Sink, e.id)
	e.queue = bus.NewTickQueue(e.cfg.QueueCapacity)
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.log.Append(Entry{
		Severity: SeverityInfo,
		Message:  fmt.Sprintf("algorithm started: %d rules, %s buy %s qty %d", len(rules), position.Symbol, position.BuyPrice, position.Quantity),
	})
	logs.Infof("algorithm %s started: %d rules on %s", e.id, len(rules), position.Symbol)

	go e.queue.Run(e.ctx, e.evaluate)
	go e.log.Forward(e.ctx)
	return nil
}

// HandleTick enqueues a tick for evaluation. Ticks for other
// instruments and ticks arriving outside running are ignored.
func (e *Engine) HandleTick(tick model.Tick) {
	e.mu.Lock()
	running := e.status == StatusRunning
	securityID := e.position.SecurityID
	queue := e.queue
	e.mu.Unlock()

	if !running || queue == nil || tick.SecurityID != securityID {
		return
	}
	if err := queue.TryPublish(tick); err != nil {
		logs.Warnf("tick dropped: %+v", err)
	}
}

// Cancel transitions running → cancelled. Calling it on an idle or
// terminal algorithm is a no-op. An in-flight action is not aborted;
// its completion is suppressed by the generation guard.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusRunning {
		return
	}
	e.status = StatusCancelled
	e.generation++
	e.log.Append(Entry{Severity: SeverityInfo, Message: "algorithm cancelled"})
	obs.AlgorithmsFinished.WithLabelValues(StatusCancelled.String()).Inc()
	logs.Infof("algorithm %s cancelled", e.id)
	if e.cancel != nil {
		e.cancel()
	}
}

// Status returns the current lifecycle state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	s := e.status
	e.mu.Unlock()
	return s
}

// Snapshot copies the algorithm state for the caller's display.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		ID:          e.id,
		Status:      e.status,
		StartedAt:   e.startedAt,
		CompletedAt: e.completedAt,
		Err:         e.err,
	}
	snap.Rules = make([]model.Rule, 0, len(e.rules))
	for _, state := range e.rules {
		snap.Rules = append(snap.Rules, state.rule)
	}
	if e.log != nil {
		snap.Log = e.log.All()
	}
	return snap
}

// evaluate runs one tick against every not-yet-executed rule in
// authored order. It does not short-circuit: several rules may fire on
// the same tick. Firing is a one-shot latch; the action is awaited
// before the latch outcome is recorded.
func (e *Engine) evaluate(tick model.Tick) {
	e.mu.Lock()
	if e.status != StatusRunning {
		e.mu.Unlock()
		return
	}

	points := tick.LastTradedPrice.Sub(e.position.BuyPrice)

	for i := range e.rules {
		state := &e.rules[i]
		if state.rule.Executed || state.busy {
			continue
		}
		if !state.rule.Condition.Satisfied(points) {
			continue
		}

		state.busy = true
		rule := state.rule
		position := e.position
		generation := e.generation
		lastRule := i == len(e.rules)-1

		e.log.Append(Entry{
			RuleID:   rule.ID,
			Severity: SeverityAction,
			Message:  fmt.Sprintf("%s satisfied at %s (%s points from buy), executing %s", rule.Condition.Kind(), tick.LastTradedPrice, points, rule.Action.Kind()),
		})
		obs.RulesFired.WithLabelValues(rule.Condition.Kind()).Inc()

		// Cancel must not abort a dispatched action mid-flight: aborting
		// a replace between its cancel and place steps would open the
		// protection gap the executor guards against. The generation
		// check below suppresses the stale result instead.
		actionCtx := context.WithoutCancel(e.ctx)
		e.mu.Unlock()

		outcome, err := e.exec.Execute(actionCtx, rule.Action, position)

		e.mu.Lock()
		e.rules[i].busy = false

		if e.generation != generation || e.status != StatusRunning {
			// Stale completion after cancel: logged, never applied.
			e.log.Append(Entry{
				RuleID:   rule.ID,
				Severity: SeverityInfo,
				Message:  "action completed after cancellation, result discarded",
			})
			e.mu.Unlock()
			return
		}

		if err != nil {
			// A failed protective-order action may leave the position
			// unprotected; halt and demand operator attention.
			e.log.Append(Entry{
				RuleID:   rule.ID,
				Severity: SeverityError,
				Message:  fmt.Sprintf("action failed: %+v", err),
			})
			e.status = StatusError
			e.err = err
			obs.AlgorithmsFinished.WithLabelValues(StatusError.String()).Inc()
			logs.Errorf("algorithm %s halted: %+v", e.id, err)
			e.cancel()
			e.mu.Unlock()
			return
		}

		e.rules[i].rule.Executed = true
		e.rules[i].rule.ExecutedAt = time.Now()
		e.log.Append(Entry{
			RuleID:   rule.ID,
			Severity: SeveritySuccess,
			Message:  successMessage(rule.Action, outcome),
		})

		if lastRule {
			e.status = StatusCompleted
			e.completedAt = time.Now()
			obs.AlgorithmsFinished.WithLabelValues(StatusCompleted.String()).Inc()
			logs.Infof("algorithm %s completed", e.id)
			e.cancel()
			e.mu.Unlock()
			return
		}
	}
	e.mu.Unlock()
}

func successMessage(action model.Action, outcome executor.Outcome) string {
	switch action.(type) {
	case model.PlaceProtectiveOrder:
		msg := fmt.Sprintf("protective order %s placed", outcome.OrderID)
		if outcome.CancelledCount > 0 {
			msg += fmt.Sprintf(", replaced %d", outcome.CancelledCount)
		}
		if !outcome.Confirmed {
			msg += ", placement unconfirmed"
		}
		return msg
	case model.CancelProtectiveOrders:
		return fmt.Sprintf("cancelled %d protective orders", outcome.CancelledCount)
	default:
		return "action executed"
	}
}
