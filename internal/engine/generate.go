package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// errFragmentLimit stops the source once a generation reaches MaxGenLen.
var errFragmentLimit = errors.New("fragment limit reached")

// Generation is the caller-visible handle for one StreamGenerate call.
type Generation struct {
	// ID tags the generation's fragments; Reset makes it stale.
	ID string

	engine *Engine
	done   chan struct{}

	mu        sync.Mutex
	reason    string
	delivered int
}

// Done returns a channel closed after the sink received its terminal call.
func (g *Generation) Done() <-chan struct{} { return g.done }

// Cancel requests cooperative cancellation of this generation.
func (g *Generation) Cancel() bool { return g.engine.Cancel(g.ID) }

// Reason reports the terminal reason once Done is closed: stop, length,
// canceled, error or superseded.
func (g *Generation) Reason() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reason
}

// Fragments reports how many text fragments reached the sink.
func (g *Generation) Fragments() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.delivered
}

func (g *Generation) setResult(reason string, delivered int) {
	g.mu.Lock()
	g.reason = reason
	g.delivered = delivered
	g.mu.Unlock()
}

// Generate runs one generation synchronously and returns the concatenated
// text. It blocks until the stream terminates. A failed generation comes
// back as the error and leaves the engine ready for the next call.
func (e *Engine) Generate(ctx context.Context, prompt string) (string, error) {
	return e.generateSync(ctx, prompt, nil)
}

// GenerateWithParams is Generate with per-call sampling parameters. The
// engine's own parameters are not changed.
func (e *Engine) GenerateWithParams(ctx context.Context, prompt string, p Params) (string, error) {
	return e.generateSync(ctx, prompt, &p)
}

func (e *Engine) generateSync(ctx context.Context, prompt string, override *Params) (string, error) {
	sink := &collectSink{}
	g, err := e.streamGenerate(ctx, prompt, sink, override)
	if err != nil {
		return "", err
	}
	<-g.Done()
	if sink.err != nil {
		return "", sink.err
	}
	return sink.text(), nil
}

// StreamGenerate starts one generation and returns its handle. Fragments
// flow to sink in production order from a dedicated delivery goroutine:
// zero or more Deliver calls, then exactly one of Error or Complete. At
// most one generation runs per handle; a second call while one is in
// flight is rejected, not queued.
func (e *Engine) StreamGenerate(ctx context.Context, prompt string, sink Sink) (*Generation, error) {
	return e.streamGenerate(ctx, prompt, sink, nil)
}

// StreamGenerateWithParams is StreamGenerate with per-call sampling
// parameters. The engine's own parameters are not changed.
func (e *Engine) StreamGenerateWithParams(ctx context.Context, prompt string, p Params, sink Sink) (*Generation, error) {
	return e.streamGenerate(ctx, prompt, sink, &p)
}

func (e *Engine) streamGenerate(ctx context.Context, prompt string, sink Sink, override *Params) (*Generation, error) {
	if sink == nil {
		return nil, ErrConfig("sink", "must not be nil")
	}
	e.mu.Lock()
	switch e.phase {
	case PhaseReady:
	case PhaseGenerating:
		err := alreadyGeneratingError{id: e.activeID}
		e.mu.Unlock()
		return nil, err
	default:
		err := lifecycleError{op: "generate", phase: e.phase}
		e.mu.Unlock()
		return nil, err
	}
	p := e.params
	if override != nil {
		p = *override
	}
	if err := p.Validate(); err != nil {
		e.mu.Unlock()
		return nil, err
	}

	id := uuid.NewString()
	genCtx, cancel := context.WithCancel(ctx)
	q := NewTokenQueue()
	g := &Generation{ID: id, engine: e, done: make(chan struct{})}

	e.phase = PhaseGenerating
	e.activeID = id
	e.genCancel = cancel
	e.genQueue = q
	e.genDone = g.done
	e.generations++
	e.lastUsed = time.Now()
	sess := e.session
	model := e.modelPath
	e.mu.Unlock()

	activeGenerations.Inc()
	e.publish("generate_start", model, map[string]any{"generation_id": id})

	go e.runWorker(genCtx, sess, prompt, p, q)
	go e.runDelivery(q, sink, g, model)

	return g, nil
}

// runWorker drives the source on its own goroutine. It talks only to the
// queue; the sink belongs to the delivery loop. The deferred Finish runs
// on every exit path, including a panicking source.
func (e *Engine) runWorker(ctx context.Context, sess Session, prompt string, p Params, q *TokenQueue) {
	defer q.Finish()
	defer func() {
		if r := recover(); r != nil {
			q.Push(errorFragment(fmt.Errorf("source panic: %v", r), ReasonError))
		}
	}()

	var produced int
	var limited bool
	emit := func(fragment string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.Push(textFragment(fragment))
		produced++
		if produced >= p.MaxGenLen {
			limited = true
			return errFragmentLimit
		}
		return nil
	}

	err := sess.Generate(ctx, prompt, p, emit)
	switch {
	// Hitting the cap is a normal end of stream. Some backends swallow
	// the emit error when their token callback stops them, so the limited
	// flag is checked as well.
	case errors.Is(err, errFragmentLimit), err == nil && limited:
		q.Push(endFragment(ReasonLength))
	case err == nil:
		q.Push(endFragment(ReasonStop))
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		q.Push(errorFragment(errors.New("generation canceled"), ReasonCanceled))
	default:
		q.Push(errorFragment(err, ReasonError))
	}
}

// runDelivery drains the queue and is the only goroutine that touches the
// sink. Text fragments of a superseded generation are dropped; the sink
// still gets exactly one terminal call. It drains to the end of the queue
// so that its exit implies the worker has finished producing.
func (e *Engine) runDelivery(q *TokenQueue, sink Sink, g *Generation, model string) {
	var (
		reason    string
		delivered int
		terminal  bool
	)
	for {
		frag, ok := q.Pop()
		if !ok {
			break
		}
		if terminal {
			continue
		}
		if e.staleGeneration(g.ID) {
			reason = ReasonSuperseded
			terminal = true
			sink.Error("generation superseded")
			continue
		}
		switch frag.Kind {
		case FragmentText:
			delivered++
			fragmentsTotal.Inc()
			sink.Deliver(frag.Text)
		case FragmentEnd:
			reason = frag.Reason
			terminal = true
			sink.Complete()
		case FragmentError:
			reason = frag.Reason
			terminal = true
			sink.Error(frag.Err.Error())
		}
	}
	if !terminal {
		// the queue was force-finished before the worker produced a
		// terminal fragment
		reason = ReasonCanceled
		sink.Error("generation canceled")
	}
	e.finishGeneration(g, reason, delivered, model)
}

// staleGeneration reports whether id no longer matches the active
// generation.
func (e *Engine) staleGeneration(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeID != id
}

// finishGeneration restores the handle after delivery ends and closes the
// generation's done channel last, so waiters observe consistent state.
func (e *Engine) finishGeneration(g *Generation, reason string, delivered int, model string) {
	e.mu.Lock()
	cancel := e.genCancel
	if e.activeID == g.ID {
		e.activeID = ""
		e.genCancel = nil
		e.genQueue = nil
		e.genDone = nil
		if e.phase == PhaseGenerating {
			e.phase = PhaseReady
		}
	} else {
		cancel = nil
	}
	e.lastUsed = time.Now()
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	g.setResult(reason, delivered)
	generationsTotal.WithLabelValues(reason).Inc()
	activeGenerations.Dec()
	e.publish("generate_end", model, map[string]any{
		"generation_id": g.ID,
		"reason":        reason,
		"fragments":     delivered,
	})
	close(g.done)
}

// Cancel requests cooperative cancellation of generation id. It returns
// true when id names the in-flight generation; stale or unknown ids have
// no effect. The worker stops at its next checkpoint and the sink receives
// an error terminal.
func (e *Engine) Cancel(id string) bool {
	e.mu.Lock()
	if id == "" || id != e.activeID || e.genCancel == nil {
		e.mu.Unlock()
		return false
	}
	cancel := e.genCancel
	model := e.modelPath
	e.mu.Unlock()

	cancel()
	e.publish("generate_cancel", model, map[string]any{"generation_id": id})
	return true
}

// CancelActive cancels the in-flight generation, if any.
func (e *Engine) CancelActive() bool {
	e.mu.Lock()
	id := e.activeID
	e.mu.Unlock()
	return e.Cancel(id)
}
