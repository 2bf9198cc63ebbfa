package manager

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Manager owns one engine handle per model id and routes requests to
// them. Engines are created lazily on first use and evicted LRU when the
// cap is reached.
type Manager struct {
	mu      sync.RWMutex
	engines map[string]*engine.Engine
	// loading tracks in-flight loads per model id; the channel closes
	// when the load attempt finishes, success or not.
	loading map[string]chan struct{}
	closed  bool

	registry     []types.Model
	defaultModel string

	src             engine.Source
	maxEngines      int
	maxWait         time.Duration
	shutdownTimeout time.Duration
	params          engine.Params
	pub             engine.EventPublisher
	log             zerolog.Logger

	startTime  time.Time
	loadsTotal uint64
	evictions  uint64
}

// New constructs a Manager with package defaults.
func New(reg []types.Model, defaultModel string, src engine.Source) *Manager {
	return NewWithConfig(ManagerConfig{
		Registry:     reg,
		DefaultModel: defaultModel,
		Source:       src,
	})
}

// Ready reports whether at least one engine can serve requests.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false
	}
	for _, eng := range m.engines {
		switch eng.Phase() {
		case engine.PhaseReady, engine.PhaseGenerating:
			return true
		}
	}
	return false
}

// ListModels returns the registry contents.
func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// return a shallow copy to avoid external mutation
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	return out
}

// Close shuts down every engine. Leaked workers are reported, not
// swallowed. Idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	victims := make(map[string]*engine.Engine, len(m.engines))
	for id, eng := range m.engines {
		victims[id] = eng
	}
	m.mu.Unlock()

	var errs []error
	for id, eng := range victims {
		if err := eng.Shutdown(); err != nil {
			m.log.Error().Str("model", id).Err(err).Msg("engine shutdown")
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// findModel resolves a model id against the registry.
func (m *Manager) findModel(id string) (types.Model, bool) {
	for _, mdl := range m.registry {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}

// resolveModelID applies the default-model fallback.
func (m *Manager) resolveModelID(id string) (string, error) {
	if id == "" {
		id = m.defaultModel
		if id == "" {
			return "", modelNotFoundError{id: "(unspecified)"}
		}
	}
	return id, nil
}
