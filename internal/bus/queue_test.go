package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/pkg/exception"
)

func tickFor(securityID int32) model.Tick {
	return model.Tick{SecurityID: securityID}
}

func TestPublishPreservesOrder(t *testing.T) {
	queue := NewTickQueue(8)
	for i := int32(1); i <= 5; i++ {
		require.NoError(t, queue.TryPublish(tickFor(i)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []int32
	done := make(chan struct{})
	go func() {
		queue.Run(ctx, func(tick model.Tick) {
			got = append(got, tick.SecurityID)
			if len(got) == 5 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not drain the queue")
	}
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, got)
}

func TestFullQueueDropsNewest(t *testing.T) {
	queue := NewTickQueue(2)
	require.NoError(t, queue.TryPublish(tickFor(1)))
	require.NoError(t, queue.TryPublish(tickFor(2)))

	err := queue.TryPublish(tickFor(3))
	require.ErrorIs(t, err, exception.ErrQueueFull)

	// The queued ticks survive; the overflow tick is gone.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []int32
	done := make(chan struct{})
	go func() {
		queue.Run(ctx, func(tick model.Tick) {
			got = append(got, tick.SecurityID)
			if len(got) == 2 {
				cancel()
			}
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not drain the queue")
	}
	assert.Equal(t, []int32{1, 2}, got)
}

func TestPublishAfterClose(t *testing.T) {
	queue := NewTickQueue(4)
	queue.Close()
	queue.Close() // idempotent

	err := queue.TryPublish(tickFor(1))
	assert.ErrorIs(t, err, exception.ErrQueueClosed)
}

func TestRunStopsOnClose(t *testing.T) {
	queue := NewTickQueue(4)
	require.NoError(t, queue.TryPublish(tickFor(1)))

	done := make(chan struct{})
	go func() {
		queue.Run(context.Background(), func(model.Tick) {})
		close(done)
	}()

	queue.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestZeroCapacityGetsMinimum(t *testing.T) {
	queue := NewTickQueue(0)
	assert.NoError(t, queue.TryPublish(tickFor(1)))
	assert.ErrorIs(t, queue.TryPublish(tickFor(2)), exception.ErrQueueFull)
}
