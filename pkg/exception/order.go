package exception

import "errors"

var (
	ErrOrderUnsupportedAction = errors.New("order: unsupported action")
	ErrOrderInvalidRequest    = errors.New("order: invalid request")
	ErrOrderUnknownID         = errors.New("order: unknown order id")
	ErrOrderBackendRejected   = errors.New("order: backend rejected request")
)

var (
	// ErrProtectionGap marks a replace whose cancel succeeded but whose
	// placement failed. The position is unprotected until an operator
	// intervenes, so callers must treat it as higher severity than a
	// plain action failure.
	ErrProtectionGap = errors.New("order: protection gap, cancel succeeded but placement failed")

	// ErrConfirmationTimeout means a placed order was not observed in the
	// pending book within the poll budget. The placement itself stands.
	ErrConfirmationTimeout = errors.New("order: placement not confirmed within poll budget")
)
