// Package broker defines the abstract order-backend contract the
// protection engine executes against. The concrete broker REST client
// lives in the host application; only this surface is depended on.
package broker

import (
	"context"

	"github.com/shopspring/decimal"

	"main/internal/model/enum"
)

// PendingOrder is the backend's view of an open order.
type PendingOrder struct {
	OrderID         string
	SecurityID      int32
	ExchangeSegment enum.ExchangeSegment
	Side            enum.OrderSide
	Kind            enum.OrderKind
	Price           decimal.Decimal
	TriggerPrice    decimal.Decimal
	Quantity        int64
	CorrelationTag  string
	Status          enum.OrderStatus
}

// IsProtectiveFor reports whether the order is an outstanding SELL-side
// exit guarding the given security.
func (o PendingOrder) IsProtectiveFor(securityID int32) bool {
	return o.SecurityID == securityID &&
		o.Side == enum.OrderSideSell &&
		o.Kind.IsProtective() &&
		o.Status == enum.OrderStatusPending
}

// PlaceOrderRequest carries everything the backend needs to accept an
// order. Price and TriggerPrice are used as the kind requires.
type PlaceOrderRequest struct {
	Kind            enum.OrderKind
	Side            enum.OrderSide
	SecurityID      int32
	ExchangeSegment enum.ExchangeSegment
	ProductType     string
	Quantity        int64
	Price           decimal.Decimal
	TriggerPrice    decimal.Decimal
	CorrelationTag  string
}

// OrderReceipt is the backend's acknowledgment of a place or cancel.
type OrderReceipt struct {
	OrderID string
	Status  enum.OrderStatus
}

// Backend is the minimal order-backend surface the executor needs.
type Backend interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (OrderReceipt, error)
	CancelOrder(ctx context.Context, orderID string) (OrderReceipt, error)
	ListPendingOrders(ctx context.Context) ([]PendingOrder, error)
}
