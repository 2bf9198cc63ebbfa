package engine

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Parameter names accepted by SetParameter.
const (
	ParamTemperature = "temperature"
	ParamTopP        = "top_p"
	ParamMaxGenLen   = "max_gen_len"
)

// Initialize probes the model resource, opens a session through the source
// and moves the handle to ready. Legal only from uninitialized or failed.
// The probe and the open run with the mutex released while the phase reads
// loading; once a session is installed the model path is pinned. On
// failure the phase is failed with a reason and the handle can be
// re-initialized.
func (e *Engine) Initialize(ctx context.Context, modelPath string, p Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	switch e.phase {
	case PhaseUninitialized, PhaseFailed:
	default:
		phase := e.phase
		e.mu.Unlock()
		return lifecycleError{op: "initialize", phase: phase}
	}
	if modelPath == "" {
		e.mu.Unlock()
		return ErrConfig("model_path", "must not be empty")
	}
	if (p != Params{}) {
		if err := p.Validate(); err != nil {
			e.mu.Unlock()
			return err
		}
		e.params = p
	}
	if e.src == nil {
		e.phase = PhaseFailed
		e.failure = "no generation source configured"
		e.mu.Unlock()
		return ErrLoad(modelPath, "no generation source configured")
	}
	e.phase = PhaseLoading
	e.failure = ""
	check := e.check
	src := e.src
	e.mu.Unlock()

	e.publish("initialize_start", modelPath, nil)
	start := time.Now()

	fail := func(reason string) error {
		e.mu.Lock()
		e.phase = PhaseFailed
		e.failure = reason
		e.mu.Unlock()
		e.publish("initialize_failed", modelPath, map[string]any{"reason": reason})
		return ErrLoad(modelPath, reason)
	}

	if err := check(modelPath); err != nil {
		return fail(err.Error())
	}
	if err := ctx.Err(); err != nil {
		return fail(err.Error())
	}
	sess, err := src.Open(modelPath)
	if err != nil {
		return fail(err.Error())
	}

	e.mu.Lock()
	if e.phase != PhaseLoading {
		// Shutdown raced ahead of the open; do not resurrect the handle.
		phase := e.phase
		e.mu.Unlock()
		sess.Close()
		return lifecycleError{op: "initialize", phase: phase}
	}
	e.session = sess
	e.modelPath = modelPath
	e.phase = PhaseReady
	e.lastUsed = time.Now()
	e.mu.Unlock()

	loadDuration.Observe(time.Since(start).Seconds())
	e.publish("initialize_ready", modelPath, map[string]any{
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// SetParameter updates one named parameter: temperature, top_p or
// max_gen_len. Numeric values of any width are accepted, including the
// float64 produced by JSON decoding. The change applies to the next
// generation; a running worker keeps its snapshot. On validation failure
// nothing changes.
func (e *Engine) SetParameter(name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.phase {
	case PhaseReady, PhaseGenerating:
	default:
		return lifecycleError{op: "set parameter", phase: e.phase}
	}
	next := e.params
	switch name {
	case ParamTemperature:
		f, ok := toFloat(value)
		if !ok {
			return ErrConfig(name, "must be a number")
		}
		next.Temperature = f
	case ParamTopP:
		f, ok := toFloat(value)
		if !ok {
			return ErrConfig(name, "must be a number")
		}
		next.TopP = f
	case ParamMaxGenLen:
		f, ok := toFloat(value)
		if !ok || f != math.Trunc(f) {
			return ErrConfig(name, "must be an integer")
		}
		next.MaxGenLen = int(f)
	default:
		return ErrConfig(name, "unknown parameter")
	}
	if err := next.Validate(); err != nil {
		return err
	}
	e.params = next
	return nil
}

// SetParams replaces the whole sampling configuration. Same phase and
// validation rules as SetParameter.
func (e *Engine) SetParams(p Params) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.phase {
	case PhaseReady, PhaseGenerating:
	default:
		return lifecycleError{op: "set parameters", phase: e.phase}
	}
	if err := p.Validate(); err != nil {
		return err
	}
	e.params = p
	return nil
}

// toFloat widens any numeric value.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Reset aborts any in-flight generation and returns the handle to ready.
// The active generation id is invalidated first, so fragments still in
// flight go stale and are never delivered to a later sink. Reset waits for
// the delivery loop to exit, bounded by the shutdown timeout; overrunning
// it is reported as a resource leak.
func (e *Engine) Reset() error {
	e.mu.Lock()
	switch e.phase {
	case PhaseReady, PhaseGenerating:
	default:
		phase := e.phase
		e.mu.Unlock()
		return lifecycleError{op: "reset", phase: phase}
	}
	hadGen := e.genDone != nil
	cancel := e.genCancel
	done := e.genDone
	q := e.genQueue
	model := e.modelPath
	timeout := e.shutdownTimeout
	e.activeID = ""
	e.mu.Unlock()

	var leak error
	if hadGen {
		cancel()
		if !waitClosed(done, timeout) {
			// release the delivery loop; the worker goroutine is leaked
			q.Finish()
			leak = ErrResourceLeak("generation worker", timeout)
		}
	}

	e.mu.Lock()
	if hadGen && e.phase == PhaseGenerating {
		e.phase = PhaseReady
	}
	e.activeID = ""
	e.genCancel = nil
	e.genQueue = nil
	e.genDone = nil
	e.lastUsed = time.Now()
	e.mu.Unlock()

	e.publish("reset", model, map[string]any{"had_generation": hadGen})
	return leak
}

// Shutdown cancels any in-flight generation, joins the delivery loop and
// closes the session. Idempotent: the first call does the work, later
// calls return nil. A worker that ignores cancellation past the shutdown
// timeout is reported as a resource leak, never swallowed; the handle
// still closes so the caller can exit deliberately.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	if e.phase == PhaseClosed {
		e.mu.Unlock()
		return nil
	}
	cancel := e.genCancel
	done := e.genDone
	q := e.genQueue
	sess := e.session
	model := e.modelPath
	timeout := e.shutdownTimeout
	e.phase = PhaseClosed
	e.session = nil
	e.mu.Unlock()

	e.publish("shutdown_start", model, nil)

	var leak error
	if cancel != nil {
		cancel()
	}
	if done != nil && !waitClosed(done, timeout) {
		// release the delivery loop; the worker goroutine is leaked
		q.Finish()
		leak = ErrResourceLeak("generation worker", timeout)
	}

	var closeErr error
	if sess != nil && leak == nil {
		closeErr = sess.Close()
	}

	e.mu.Lock()
	e.activeID = ""
	e.genCancel = nil
	e.genQueue = nil
	e.genDone = nil
	e.mu.Unlock()

	if leak != nil {
		e.publish("shutdown_leak", model, map[string]any{
			"timeout_ms": timeout.Milliseconds(),
		})
		return leak
	}
	e.publish("shutdown_done", model, nil)
	if closeErr != nil {
		return fmt.Errorf("close session: %w", closeErr)
	}
	return nil
}

// waitClosed waits for ch to close, bounded by timeout.
func waitClosed(ch <-chan struct{}, timeout time.Duration) bool {
	if ch == nil {
		return true
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	}
}
