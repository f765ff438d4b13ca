package exception

import "errors"

var (
	ErrFrameTooShort       = errors.New("feed: frame too short")
	ErrUnknownPacketType   = errors.New("feed: unknown packet type")
	ErrUnknownSegment      = errors.New("feed: unknown exchange segment")
	ErrFeedNotConnected    = errors.New("feed: not connected")
	ErrFeedAlreadyStarted  = errors.New("feed: already started")
	ErrPermanentDisconnect = errors.New("feed: reconnect attempts exhausted")
)
