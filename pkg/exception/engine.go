package exception

import "errors"

var (
	ErrAlgoNotRunning      = errors.New("engine: algorithm is not running")
	ErrAlgoAlreadyRunning  = errors.New("engine: an algorithm is already running")
	ErrAlgoNoRules         = errors.New("engine: empty rule set")
	ErrAlgoInvalidPosition = errors.New("engine: invalid position context")
	ErrQueueFull           = errors.New("engine: tick queue full")
	ErrQueueClosed         = errors.New("engine: tick queue closed")
)
