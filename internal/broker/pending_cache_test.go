package broker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model/enum"
)

func pendingOrder(orderID string, securityID int32) PendingOrder {
	return PendingOrder{
		OrderID:      orderID,
		SecurityID:   securityID,
		Side:         enum.OrderSideSell,
		Kind:         enum.OrderKindStopLossMarket,
		TriggerPrice: decimal.RequireFromString("95"),
		Quantity:     10,
		Status:       enum.OrderStatusPending,
	}
}

func TestCachePutRemove(t *testing.T) {
	cache := NewPendingCache()
	cache.Put(pendingOrder("a", 1))
	cache.Put(pendingOrder("b", 2))
	require.Len(t, cache.Snapshot(), 2)

	cache.Remove("a")
	cache.Remove("missing")

	snapshot := cache.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "b", snapshot[0].OrderID)
}

func TestCacheReplaceAll(t *testing.T) {
	cache := NewPendingCache()
	cache.Put(pendingOrder("stale", 1))

	cache.ReplaceAll([]PendingOrder{pendingOrder("x", 3), pendingOrder("y", 4)})

	ids := make(map[string]bool)
	for _, order := range cache.Snapshot() {
		ids[order.OrderID] = true
	}
	assert.False(t, ids["stale"])
	assert.True(t, ids["x"])
	assert.True(t, ids["y"])
}

func TestCacheRefreshFromBackend(t *testing.T) {
	backend := NewPaper()
	_, err := backend.PlaceOrder(context.Background(), PlaceOrderRequest{
		Kind:         enum.OrderKindStopLossMarket,
		Side:         enum.OrderSideSell,
		SecurityID:   7,
		Quantity:     5,
		TriggerPrice: decimal.RequireFromString("90"),
	})
	require.NoError(t, err)

	cache := NewPendingCache()
	cache.Put(pendingOrder("phantom", 7))

	require.NoError(t, cache.Refresh(context.Background(), backend))

	snapshot := cache.Snapshot()
	require.Len(t, snapshot, 1)
	assert.NotEqual(t, "phantom", snapshot[0].OrderID)
	assert.Equal(t, int32(7), snapshot[0].SecurityID)
}

func TestCacheRefreshKeepsViewOnError(t *testing.T) {
	backend := NewPaper()
	backend.FailList = func() error { return errors.New("book unavailable") }

	cache := NewPendingCache()
	cache.Put(pendingOrder("kept", 1))

	require.Error(t, cache.Refresh(context.Background(), backend))

	snapshot := cache.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "kept", snapshot[0].OrderID)
}

func TestIsProtectiveFor(t *testing.T) {
	order := pendingOrder("a", 42)
	assert.True(t, order.IsProtectiveFor(42))
	assert.False(t, order.IsProtectiveFor(43), "different security")

	buySide := order
	buySide.Side = enum.OrderSideBuy
	assert.False(t, buySide.IsProtectiveFor(42), "BUY orders are never protective")

	plain := order
	plain.Kind = enum.OrderKindMarket
	assert.False(t, plain.IsProtectiveFor(42), "market orders are not protective")

	done := order
	done.Status = enum.OrderStatusTraded
	assert.False(t, done.IsProtectiveFor(42), "only pending orders count")
}
