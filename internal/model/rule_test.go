package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func points(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPointsGainSatisfied(t *testing.T) {
	cond := PointsGain{ThresholdPoints: points("25")}

	for _, tc := range []struct {
		name   string
		points string
		want   bool
	}{
		{"below threshold", "24.99", false},
		{"exactly at threshold", "25", true},
		{"above threshold", "25.01", true},
		{"negative distance", "-10", false},
		{"zero distance", "0", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := cond.Satisfied(points(tc.points)); got != tc.want {
				t.Errorf("Satisfied(%s) = %v, want %v", tc.points, got, tc.want)
			}
		})
	}
}

func TestPointsLossSatisfied(t *testing.T) {
	cond := PointsLoss{ThresholdPoints: points("10")}

	for _, tc := range []struct {
		name   string
		points string
		want   bool
	}{
		{"above watermark", "-9.99", false},
		{"exactly at watermark", "-10", true},
		{"below watermark", "-10.01", true},
		{"positive distance", "5", false},
		{"zero distance", "0", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := cond.Satisfied(points(tc.points)); got != tc.want {
				t.Errorf("Satisfied(%s) = %v, want %v", tc.points, got, tc.want)
			}
		})
	}
}

func TestConditionKinds(t *testing.T) {
	if kind := (PointsGain{}).Kind(); kind != "points_gain" {
		t.Errorf("PointsGain kind = %q", kind)
	}
	if kind := (PointsLoss{}).Kind(); kind != "points_loss" {
		t.Errorf("PointsLoss kind = %q", kind)
	}
	if kind := (PlaceProtectiveOrder{}).Kind(); kind != "place_protective_order" {
		t.Errorf("PlaceProtectiveOrder kind = %q", kind)
	}
	if kind := (CancelProtectiveOrders{}).Kind(); kind != "cancel_protective_orders" {
		t.Errorf("CancelProtectiveOrders kind = %q", kind)
	}
}

func TestRuleFresh(t *testing.T) {
	rule := Rule{
		ID:         "tp-25",
		Condition:  PointsGain{ThresholdPoints: points("25")},
		Executed:   true,
		ExecutedAt: time.Now(),
	}

	fresh := rule.Fresh()
	if fresh.Executed {
		t.Error("Fresh did not clear the execution latch")
	}
	if !fresh.ExecutedAt.IsZero() {
		t.Error("Fresh did not clear the execution timestamp")
	}
	if fresh.ID != rule.ID {
		t.Errorf("Fresh changed the rule ID: %q", fresh.ID)
	}
	if !rule.Executed {
		t.Error("Fresh mutated the receiver")
	}
}
