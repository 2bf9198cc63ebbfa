package manager

import "errors"

// modelNotFoundError signals a model id absent from the registry for 404
// mapping.
type modelNotFoundError struct{ id string }

func (e modelNotFoundError) Error() string { return "model not found: " + e.id }

// ErrModelNotFound constructs a modelNotFoundError.
func ErrModelNotFound(id string) error { return modelNotFoundError{id: id} }

// IsModelNotFound reports whether the error indicates a missing model id.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// closedError signals that the manager has shut down and accepts no
// further work.
type closedError struct{}

func (closedError) Error() string { return "manager is closed" }

// ErrClosed constructs a closedError.
func ErrClosed() error { return closedError{} }

// IsClosed reports whether err indicates a closed manager.
func IsClosed(err error) bool {
	var e closedError
	return errors.As(err, &e)
}

// waitTimeoutError signals that a caller gave up waiting for another
// caller's load of the same model.
type waitTimeoutError struct{ id string }

func (e waitTimeoutError) Error() string { return "timed out waiting for model load: " + e.id }

// ErrWaitTimeout constructs a waitTimeoutError.
func ErrWaitTimeout(id string) error { return waitTimeoutError{id: id} }

// IsWaitTimeout reports whether err indicates a load-wait timeout (return
// 429).
func IsWaitTimeout(err error) bool {
	var e waitTimeoutError
	return errors.As(err, &e)
}
