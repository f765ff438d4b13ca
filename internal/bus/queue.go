// Package bus carries ticks from the feed goroutine to the single
// evaluation goroutine so evaluation order matches arrival order.
package bus

import (
	"context"
	"sync/atomic"

	"main/internal/model"
	"main/internal/obs"
	"main/pkg/exception"
)

// TickQueue is a bounded, non-blocking queue of ticks.
type TickQueue struct {
	ch     chan model.Tick
	closed uint32
}

// NewTickQueue allocates a queue with the given capacity.
func NewTickQueue(capacity int) *TickQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &TickQueue{ch: make(chan model.Tick, capacity)}
}

// TryPublish enqueues a tick without blocking. A full queue drops the
// incoming tick and counts the drop.
func (q *TickQueue) TryPublish(tick model.Tick) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return exception.ErrQueueClosed
	}
	select {
	case q.ch <- tick:
		return nil
	default:
		obs.TickQueueDrops.Inc()
		return exception.ErrQueueFull
	}
}

// Close stops the queue from accepting new ticks.
func (q *TickQueue) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}

// Run consumes ticks until the context is done or the queue is closed.
func (q *TickQueue) Run(ctx context.Context, handler func(model.Tick)) {
	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-q.ch:
			if !ok {
				return
			}
			handler(tick)
		}
	}
}
