package errs

import "errors"

var (
	NotRunning          = errors.New("bridge service is not running")
	AlreadyRunning      = errors.New("bridge service is already running")
	QueueFull           = errors.New("pending submission queue is full")
	RuntimeNotConnected = errors.New("interpreter runtime is not connected")
	ReadyTimeout        = errors.New("interpreter did not report readiness in time")
)

// Programming errors: integration bugs, not runtime conditions.
var (
	CallbackUnset   = errors.New("callback slot invoked before it was bound")
	CallbackRebound = errors.New("callback slot bound twice")
	DispatcherUnset = errors.New("no dispatcher bound to execution bridge")
)
