package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/common/fsutil"
)

// Default applied when Config.ShutdownTimeout is unset.
const defaultShutdownTimeout = 5 * time.Second

// Config encapsulates all tunables for Engine construction.
type Config struct {
	// Source opens model sessions. Required.
	Source Source
	// Check probes that a model resource is reachable before opening it.
	// Defaults to fsutil.CheckModelPath.
	Check func(path string) error
	// Params are the initial sampling parameters. Zero value means
	// package defaults.
	Params Params
	// ShutdownTimeout bounds how long Shutdown and Reset wait for the
	// generation goroutines before reporting a leak.
	ShutdownTimeout time.Duration
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
	// Logger, when set, records lifecycle activity.
	Logger *zerolog.Logger
}

// Engine owns one model session and the state machine around it. Each
// handle is independent: callers create as many engines as they need and
// no process-wide state is involved.
type Engine struct {
	mu sync.Mutex

	phase     Phase
	failure   string
	modelPath string
	params    Params

	session Session

	activeID  string             // "" when no generation is in flight
	genCancel context.CancelFunc // cancels the in-flight generation
	genQueue  *TokenQueue        // queue of the in-flight generation
	genDone   chan struct{}      // closed when its delivery loop exits

	generations uint64
	lastUsed    time.Time

	src             Source
	check           func(string) error
	shutdownTimeout time.Duration
	pub             EventPublisher
	log             zerolog.Logger
}

// New constructs an Engine for src with package defaults.
func New(src Source) *Engine {
	return NewWithConfig(Config{Source: src})
}

// NewWithConfig constructs an Engine from cfg, applying defaults for
// unset fields.
func NewWithConfig(cfg Config) *Engine {
	e := &Engine{
		phase:           PhaseUninitialized,
		params:          cfg.Params,
		src:             cfg.Source,
		check:           cfg.Check,
		shutdownTimeout: cfg.ShutdownTimeout,
		pub:             cfg.Publisher,
		log:             zerolog.Nop(),
	}
	if (e.params == Params{}) {
		e.params = DefaultParams()
	}
	if e.check == nil {
		e.check = fsutil.CheckModelPath
	}
	if e.shutdownTimeout <= 0 {
		e.shutdownTimeout = defaultShutdownTimeout
	}
	if e.pub == nil {
		e.pub = noopPublisher{}
	}
	if cfg.Logger != nil {
		e.log = *cfg.Logger
	}
	return e
}

// SetEventPublisher replaces the engine's event publisher. Tests install a
// MemoryPublisher through this.
func (e *Engine) SetEventPublisher(pub EventPublisher) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if pub == nil {
		pub = noopPublisher{}
	}
	e.pub = pub
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// FailureReason returns the reason recorded when the phase is failed.
func (e *Engine) FailureReason() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failure
}

// ModelPath returns the resource pinned by Initialize.
func (e *Engine) ModelPath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modelPath
}

// Params returns the current sampling parameters.
func (e *Engine) Params() Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// ActiveGeneration returns the id of the in-flight generation, or "".
func (e *Engine) ActiveGeneration() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeID
}

// Snapshot returns a read-only view of the handle.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Phase:            e.phase,
		FailureReason:    e.failure,
		ModelPath:        e.modelPath,
		Params:           e.params,
		ActiveGeneration: e.activeID,
		Generations:      e.generations,
		LastUsed:         e.lastUsed,
	}
}
