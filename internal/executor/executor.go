// Package executor turns fired rule actions into backend order calls
// while holding the single-active-protective-order invariant: for one
// security at most one SELL-side exit order may be outstanding. The
// invariant is procedural (cancel before place), not transactional.
package executor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/broker"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/pkg/exception"
)

// Config bounds the confirmation poll and sets price rounding.
type Config struct {
	ConfirmAttempts int
	ConfirmInterval time.Duration
	PricePrecision  int32
}

func (cfg Config) withDefaults() Config {
	if cfg.ConfirmAttempts <= 0 {
		cfg.ConfirmAttempts = 3
	}
	if cfg.ConfirmInterval <= 0 {
		cfg.ConfirmInterval = time.Second
	}
	if cfg.PricePrecision <= 0 {
		cfg.PricePrecision = 2
	}
	return cfg
}

// CancelFailure records one order that could not be cancelled.
type CancelFailure struct {
	OrderID string
	Err     error
}

// Outcome reports what an executed action did.
type Outcome struct {
	OrderID        string
	CancelledIDs   []string
	CancelledCount int
	CancelFailures []CancelFailure
	Confirmed      bool
}

// Executor executes protective-order actions against the backend and
// keeps the shared pending cache roughly in step.
type Executor struct {
	cfg     Config
	backend broker.Backend
	cache   *broker.PendingCache
}

// New builds an executor. cache may be nil when no shared view exists.
func New(cfg Config, backend broker.Backend, cache *broker.PendingCache) *Executor {
	return &Executor{
		cfg:     cfg.withDefaults(),
		backend: backend,
		cache:   cache,
	}
}

// Execute runs one action for the position and blocks until the backend
// calls finish or fail.
func (e *Executor) Execute(ctx context.Context, action model.Action, position model.PositionContext) (Outcome, error) {
	switch a := action.(type) {
	case model.PlaceProtectiveOrder:
		return e.placeProtective(ctx, a, position)
	case model.CancelProtectiveOrders:
		return e.cancelProtective(ctx, position)
	default:
		return Outcome{}, errors.Wrapf(exception.ErrOrderUnsupportedAction, "action %T", action)
	}
}

func (e *Executor) placeProtective(ctx context.Context, action model.PlaceProtectiveOrder, position model.PositionContext) (Outcome, error) {
	var outcome Outcome

	target := position.BuyPrice.Add(action.OffsetPoints).Round(e.cfg.PricePrecision)

	existing, err := e.findProtective(ctx, position.SecurityID)
	if err != nil {
		return outcome, errors.Wrap(err, "query existing protective orders")
	}

	// Cancel first so the new order never coexists with the old one.
	// A cancel failure leaves the old order presumably active, so the
	// position stays protected and this is an ordinary failure.
	for _, old := range existing {
		if _, err := e.backend.CancelOrder(ctx, old.OrderID); err != nil {
			return outcome, errors.Wrapf(err, "cancel protective order %s", old.OrderID)
		}
		obs.OrdersCancelled.Inc()
		outcome.CancelledIDs = append(outcome.CancelledIDs, old.OrderID)
		outcome.CancelledCount++
		if e.cache != nil {
			e.cache.Remove(old.OrderID)
		}
	}

	req := broker.PlaceOrderRequest{
		Kind:            action.OrderKind,
		Side:            enum.OrderSideSell,
		SecurityID:      position.SecurityID,
		ExchangeSegment: position.ExchangeSegment,
		ProductType:     position.ProductType,
		Quantity:        position.Quantity,
		CorrelationTag:  uuid.NewString(),
	}
	if action.OrderKind == enum.OrderKindStopLoss || action.OrderKind == enum.OrderKindStopLossMarket {
		req.TriggerPrice = target
	} else {
		req.Price = target
	}

	receipt, err := e.backend.PlaceOrder(ctx, req)
	if err != nil {
		if outcome.CancelledCount > 0 {
			// The old order is gone and the new one never landed.
			obs.ProtectionGaps.Inc()
			return outcome, errors.Wrap(exception.ErrProtectionGap, err.Error())
		}
		return outcome, errors.Wrap(err, "place protective order")
	}

	outcome.OrderID = receipt.OrderID
	obs.OrdersPlaced.WithLabelValues(action.OrderKind.String()).Inc()
	if e.cache != nil {
		e.cache.Put(broker.PendingOrder{
			OrderID:         receipt.OrderID,
			SecurityID:      req.SecurityID,
			ExchangeSegment: req.ExchangeSegment,
			Side:            req.Side,
			Kind:            req.Kind,
			Price:           req.Price,
			TriggerPrice:    req.TriggerPrice,
			Quantity:        req.Quantity,
			CorrelationTag:  req.CorrelationTag,
			Status:          enum.OrderStatusPending,
		})
	}

	outcome.Confirmed = e.confirmPlacement(ctx, receipt.OrderID)
	if !outcome.Confirmed {
		obs.ConfirmationTimeouts.Inc()
		logs.Warnf("order %s not confirmed within %d polls: %+v",
			receipt.OrderID, e.cfg.ConfirmAttempts, exception.ErrConfirmationTimeout)
	}
	return outcome, nil
}

func (e *Executor) cancelProtective(ctx context.Context, position model.PositionContext) (Outcome, error) {
	var outcome Outcome

	existing, err := e.findProtective(ctx, position.SecurityID)
	if err != nil {
		return outcome, errors.Wrap(err, "query existing protective orders")
	}

	for _, order := range existing {
		if _, err := e.backend.CancelOrder(ctx, order.OrderID); err != nil {
			outcome.CancelFailures = append(outcome.CancelFailures, CancelFailure{
				OrderID: order.OrderID,
				Err:     err,
			})
			continue
		}
		obs.OrdersCancelled.Inc()
		outcome.CancelledIDs = append(outcome.CancelledIDs, order.OrderID)
		outcome.CancelledCount++
		if e.cache != nil {
			e.cache.Remove(order.OrderID)
		}
	}

	if len(outcome.CancelFailures) > 0 {
		return outcome, errors.Errorf("cancelled %d of %d protective orders",
			outcome.CancelledCount, len(existing))
	}
	return outcome, nil
}

// findProtective lists the backend book and returns every outstanding
// protective order for the security. The backend stays authoritative;
// the cache is bypassed on purpose.
func (e *Executor) findProtective(ctx context.Context, securityID int32) ([]broker.PendingOrder, error) {
	orders, err := e.backend.ListPendingOrders(ctx)
	if err != nil {
		return nil, err
	}
	matched := orders[:0:0]
	for _, order := range orders {
		if order.IsProtectiveFor(securityID) {
			matched = append(matched, order)
		}
	}
	return matched, nil
}

// confirmPlacement polls the pending book until the order is visible or
// the attempt budget is spent. Best effort: a miss is reported, never
// rolled back.
func (e *Executor) confirmPlacement(ctx context.Context, orderID string) bool {
	for attempt := 1; attempt <= e.cfg.ConfirmAttempts; attempt++ {
		orders, err := e.backend.ListPendingOrders(ctx)
		if err == nil {
			if e.cache != nil {
				e.cache.ReplaceAll(orders)
			}
			for _, order := range orders {
				if order.OrderID == orderID {
					return true
				}
			}
		} else {
			logs.Warnf("confirmation poll %d: %+v", attempt, err)
		}

		if attempt == e.cfg.ConfirmAttempts {
			break
		}
		timer := time.NewTimer(e.cfg.ConfirmInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
	return false
}
