package aiproxy

import "errors"

var (
	// ErrNoAvailableModel is returned when the model pool is exhausted with
	// no fallback remaining. It is terminal: no further automatic recovery
	// is attempted.
	ErrNoAvailableModel = errors.New("no available model in pool")

	// ErrEmptyContent is returned by New when the content text is blank.
	ErrEmptyContent = errors.New("content text cannot be empty")

	// ErrAttemptsExhausted is returned when a single logical call exceeds
	// the configured attempt ceiling across waits, retries and failovers.
	ErrAttemptsExhausted = errors.New("attempt limit exceeded")
)
