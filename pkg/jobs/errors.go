package jobs

import "errors"

// Dispatcher errors.
var (
	ErrDuplicate  = errors.New("job already submitted")
	ErrQueueFull  = errors.New("job queue full")
	ErrClosed     = errors.New("job dispatcher closed")
	ErrNoHandler  = errors.New("job handler not registered")
	ErrInvalidJob = errors.New("job identification id required")
)
