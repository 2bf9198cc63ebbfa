package engine

import (
	"errors"
	"fmt"
	"time"
)

// lifecycleError reports an operation that is illegal in the current phase.
type lifecycleError struct {
	op    string
	phase Phase
}

func (e lifecycleError) Error() string {
	return fmt.Sprintf("%s: engine is %s", e.op, e.phase)
}

// ErrLifecycle builds a lifecycle violation error.
func ErrLifecycle(op string, phase Phase) error { return lifecycleError{op: op, phase: phase} }

// IsLifecycle reports whether err is a lifecycle violation.
func IsLifecycle(err error) bool {
	var e lifecycleError
	return errors.As(err, &e)
}

// alreadyGeneratingError rejects a second concurrent generation on the
// same handle. Rejected, never queued.
type alreadyGeneratingError struct {
	id string
}

func (e alreadyGeneratingError) Error() string {
	if e.id == "" {
		return "generation already in flight"
	}
	return "generation already in flight: " + e.id
}

// ErrAlreadyGenerating builds a concurrent-generation rejection.
func ErrAlreadyGenerating(id string) error { return alreadyGeneratingError{id: id} }

// IsAlreadyGenerating reports whether err rejected a concurrent generation.
func IsAlreadyGenerating(err error) bool {
	var e alreadyGeneratingError
	return errors.As(err, &e)
}

// configError reports an out-of-range or malformed parameter.
type configError struct {
	name   string
	reason string
}

func (e configError) Error() string {
	return "invalid parameter " + e.name + ": " + e.reason
}

// ErrConfig builds a parameter validation error.
func ErrConfig(name, reason string) error { return configError{name: name, reason: reason} }

// IsConfig reports whether err is a parameter validation error.
func IsConfig(err error) bool {
	var e configError
	return errors.As(err, &e)
}

// loadError reports a failed initialization. The handle stays queryable
// and can be re-initialized.
type loadError struct {
	path   string
	reason string
}

func (e loadError) Error() string {
	return "load " + e.path + ": " + e.reason
}

// ErrLoad builds a model load failure.
func ErrLoad(path, reason string) error { return loadError{path: path, reason: reason} }

// IsLoad reports whether err is a model load failure.
func IsLoad(err error) bool {
	var e loadError
	return errors.As(err, &e)
}

// generationError reports a failed generation. It reaches callers through
// the sink error path; a failed generation returns the engine to ready.
type generationError struct {
	reason string
}

func (e generationError) Error() string {
	return "generation failed: " + e.reason
}

// ErrGeneration builds a generation failure.
func ErrGeneration(reason string) error { return generationError{reason: reason} }

// IsGeneration reports whether err is a generation failure.
func IsGeneration(err error) bool {
	var e generationError
	return errors.As(err, &e)
}

// leakError reports a worker that outlived its join deadline. Never
// swallowed: shutdown surfaces it to the caller.
type leakError struct {
	what    string
	timeout time.Duration
}

func (e leakError) Error() string {
	return fmt.Sprintf("%s did not exit within %s: resources leaked", e.what, e.timeout)
}

// ErrResourceLeak builds a join-timeout error.
func ErrResourceLeak(what string, timeout time.Duration) error {
	return leakError{what: what, timeout: timeout}
}

// IsResourceLeak reports whether err is a join-timeout leak.
func IsResourceLeak(err error) bool {
	var e leakError
	return errors.As(err, &e)
}
