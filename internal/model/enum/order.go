package enum

// OrderSide is the direction of an order.
type OrderSide uint8

const (
	_order_side_beg OrderSide = iota
	OrderSideBuy
	OrderSideSell
	_order_side_end
)

func (s OrderSide) IsAvailable() bool {
	return s > _order_side_beg && s < _order_side_end
}

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "BUY"
	case OrderSideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// OrderKind is the order type sent to the order backend.
type OrderKind uint8

const (
	_order_kind_beg OrderKind = iota
	OrderKindLimit
	OrderKindMarket
	OrderKindStopLoss
	OrderKindStopLossMarket
	_order_kind_end
)

func (k OrderKind) IsAvailable() bool {
	return k > _order_kind_beg && k < _order_kind_end
}

func (k OrderKind) String() string {
	switch k {
	case OrderKindLimit:
		return "LIMIT"
	case OrderKindMarket:
		return "MARKET"
	case OrderKindStopLoss:
		return "STOP_LOSS"
	case OrderKindStopLossMarket:
		return "STOP_LOSS_MARKET"
	default:
		return "UNKNOWN"
	}
}

// IsProtective reports whether the kind can close a long position
// as a stop-loss or take-profit exit.
func (k OrderKind) IsProtective() bool {
	switch k {
	case OrderKindLimit, OrderKindStopLoss, OrderKindStopLossMarket:
		return true
	default:
		return false
	}
}

// OrderStatus is the backend's view of an order lifecycle.
type OrderStatus uint8

const (
	_order_status_beg OrderStatus = iota
	OrderStatusPending
	OrderStatusTraded
	OrderStatusCancelled
	OrderStatusRejected
	_order_status_end
)

func (s OrderStatus) IsAvailable() bool {
	return s > _order_status_beg && s < _order_status_end
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusPending:
		return "PENDING"
	case OrderStatusTraded:
		return "TRADED"
	case OrderStatusCancelled:
		return "CANCELLED"
	case OrderStatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}
