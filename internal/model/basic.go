package model

import (
	"github.com/shopspring/decimal"

	"main/internal/model/enum"
)

// Tick is one normalized price update decoded from a feed frame.
// Ticks are ephemeral and never stored.
type Tick struct {
	SecurityID        int32
	ExchangeSegment   enum.ExchangeSegment
	LastTradedPrice   decimal.Decimal
	LastTradeEpochSec int64
}

// PositionContext describes the single open long position an algorithm
// protects. Supplied once at start and read-only afterwards.
type PositionContext struct {
	SecurityID      int32
	ExchangeSegment enum.ExchangeSegment
	ProductType     string
	Symbol          string
	BuyPrice        decimal.Decimal
	Quantity        int64
}

// Instrument identifies one feed subscription target.
type Instrument struct {
	ExchangeSegment enum.ExchangeSegment
	SecurityID      int32
}
