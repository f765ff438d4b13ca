// Package obs exposes Prometheus instrumentation for the protection
// engine. Collectors are registered at init and served by the host
// binary's /metrics handler.
package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedTicksDecoded counts frames decoded into ticks.
	FeedTicksDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guard_feed_ticks_decoded_total",
		Help: "Feed frames decoded into ticks",
	})

	// FeedDecodeErrors counts dropped malformed frames.
	FeedDecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guard_feed_decode_errors_total",
		Help: "Feed frames dropped because decoding failed",
	})

	// FeedReconnectAttempts counts reconnect attempts after drops.
	FeedReconnectAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guard_feed_reconnect_attempts_total",
		Help: "Reconnect attempts after unintentional disconnects",
	})

	// FeedPermanentDisconnects counts exhausted reconnect budgets.
	FeedPermanentDisconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guard_feed_permanent_disconnects_total",
		Help: "Times the reconnect attempt budget was exhausted",
	})

	// TickQueueDrops counts ticks dropped on queue overflow.
	TickQueueDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guard_tick_queue_drops_total",
		Help: "Ticks dropped because the evaluation queue was full",
	})

	// RulesFired counts rules whose condition latched, by condition.
	RulesFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guard_rules_fired_total",
		Help: "Rules fired by condition kind",
	}, []string{"condition"})

	// AlgorithmsFinished counts terminal transitions by status.
	AlgorithmsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guard_algorithms_finished_total",
		Help: "Algorithms reaching a terminal status",
	}, []string{"status"})

	// OrdersPlaced counts protective orders placed, by kind.
	OrdersPlaced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guard_orders_placed_total",
		Help: "Protective orders placed",
	}, []string{"kind"})

	// OrdersCancelled counts protective orders cancelled.
	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guard_orders_cancelled_total",
		Help: "Protective orders cancelled",
	})

	// ProtectionGaps counts replaces that left the position unprotected.
	ProtectionGaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guard_protection_gaps_total",
		Help: "Replaces whose cancel succeeded but placement failed",
	})

	// ConfirmationTimeouts counts placements not seen in the pending
	// book within the poll budget.
	ConfirmationTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guard_confirmation_timeouts_total",
		Help: "Placements not confirmed within the poll budget",
	})
)
