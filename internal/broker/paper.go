package broker

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"

	"main/internal/model/enum"
	"main/pkg/exception"
)

// Paper is an in-memory Backend used by tests and dry runs. Orders
// never touch an exchange; they sit in the pending book until
// cancelled. Failure hooks let tests inject backend errors.
type Paper struct {
	mu     sync.Mutex
	orders map[string]PendingOrder

	// FailPlace, when set, is consulted before accepting a placement.
	FailPlace func(req PlaceOrderRequest) error
	// FailCancel, when set, is consulted before accepting a cancel.
	FailCancel func(orderID string) error
	// FailList, when set, is consulted before listing pending orders.
	FailList func() error
}

// NewPaper builds an empty paper backend.
func NewPaper() *Paper {
	return &Paper{orders: make(map[string]PendingOrder)}
}

func (p *Paper) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (OrderReceipt, error) {
	if err := ctx.Err(); err != nil {
		return OrderReceipt{}, err
	}
	if !req.Kind.IsAvailable() || !req.Side.IsAvailable() || req.Quantity <= 0 {
		return OrderReceipt{}, exception.ErrOrderInvalidRequest
	}
	if p.FailPlace != nil {
		if err := p.FailPlace(req); err != nil {
			return OrderReceipt{}, errors.Wrap(exception.ErrOrderBackendRejected, err.Error())
		}
	}

	order := PendingOrder{
		OrderID:         uuid.New().String(),
		SecurityID:      req.SecurityID,
		ExchangeSegment: req.ExchangeSegment,
		Side:            req.Side,
		Kind:            req.Kind,
		Price:           req.Price,
		TriggerPrice:    req.TriggerPrice,
		Quantity:        req.Quantity,
		CorrelationTag:  req.CorrelationTag,
		Status:          enum.OrderStatusPending,
	}

	p.mu.Lock()
	p.orders[order.OrderID] = order
	p.mu.Unlock()

	return OrderReceipt{OrderID: order.OrderID, Status: enum.OrderStatusPending}, nil
}

func (p *Paper) CancelOrder(ctx context.Context, orderID string) (OrderReceipt, error) {
	if err := ctx.Err(); err != nil {
		return OrderReceipt{}, err
	}
	if p.FailCancel != nil {
		if err := p.FailCancel(orderID); err != nil {
			return OrderReceipt{}, errors.Wrap(exception.ErrOrderBackendRejected, err.Error())
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.orders[orderID]; !ok {
		return OrderReceipt{}, exception.ErrOrderUnknownID
	}
	delete(p.orders, orderID)
	return OrderReceipt{OrderID: orderID, Status: enum.OrderStatusCancelled}, nil
}

func (p *Paper) ListPendingOrders(ctx context.Context) ([]PendingOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.FailList != nil {
		if err := p.FailList(); err != nil {
			return nil, errors.Wrap(exception.ErrOrderBackendRejected, err.Error())
		}
	}

	p.mu.Lock()
	out := make([]PendingOrder, 0, len(p.orders))
	for _, order := range p.orders {
		out = append(out, order)
	}
	p.mu.Unlock()
	return out, nil
}
