package model

import (
	"time"

	"github.com/shopspring/decimal"

	"main/internal/model/enum"
)

// Condition is a trigger evaluated against the points distance between
// the last traded price and the position's buy price.
type Condition interface {
	// Satisfied reports whether the condition fires for the distance.
	Satisfied(pointsFromBuy decimal.Decimal) bool
	// Kind names the condition for logs and metrics.
	Kind() string
}

// PointsGain fires once the price has moved at least ThresholdPoints
// above the buy price.
type PointsGain struct {
	ThresholdPoints decimal.Decimal
}

func (c PointsGain) Satisfied(pointsFromBuy decimal.Decimal) bool {
	return pointsFromBuy.GreaterThanOrEqual(c.ThresholdPoints)
}

func (c PointsGain) Kind() string { return "points_gain" }

// PointsLoss fires once the price has moved at least ThresholdPoints
// below the buy price. ThresholdPoints is a positive offset.
type PointsLoss struct {
	ThresholdPoints decimal.Decimal
}

func (c PointsLoss) Satisfied(pointsFromBuy decimal.Decimal) bool {
	return pointsFromBuy.LessThanOrEqual(c.ThresholdPoints.Neg())
}

func (c PointsLoss) Kind() string { return "points_loss" }

// Action is what a fired rule executes against the order backend.
type Action interface {
	// Kind names the action for logs and metrics.
	Kind() string
}

// PlaceProtectiveOrder replaces the outstanding protective order with a
// SELL order at buyPrice+OffsetPoints. A negative offset places a
// stop-loss, a positive one a take-profit.
type PlaceProtectiveOrder struct {
	OffsetPoints decimal.Decimal
	OrderKind    enum.OrderKind
}

func (a PlaceProtectiveOrder) Kind() string { return "place_protective_order" }

// CancelProtectiveOrders cancels every outstanding protective order for
// the position's security.
type CancelProtectiveOrders struct{}

func (a CancelProtectiveOrders) Kind() string { return "cancel_protective_orders" }

// Rule pairs one condition with one action. Executed flips exactly once
// while an algorithm runs and is never reset.
type Rule struct {
	ID         string
	Condition  Condition
	Action     Action
	Executed   bool
	ExecutedAt time.Time
}

// Fresh returns a copy with the execution latch cleared.
func (r Rule) Fresh() Rule {
	r.Executed = false
	r.ExecutedAt = time.Time{}
	return r
}
