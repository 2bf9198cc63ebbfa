package manager

import (
	"context"
	"time"

	"inferd/internal/engine"
)

// EnsureEngine returns a serving engine for modelID, creating and
// initializing one on first use. Callers racing on the same model wait
// for the first load instead of starting their own; the wait is bounded
// by MaxWait and honors ctx.
func (m *Manager) EnsureEngine(ctx context.Context, modelID string) (*engine.Engine, error) {
	modelID, err := m.resolveModelID(modelID)
	if err != nil {
		return nil, err
	}

	// One deadline for the whole call, however many load waits it takes.
	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()

	for {
		m.mu.RLock()
		if m.closed {
			m.mu.RUnlock()
			return nil, closedError{}
		}
		eng := m.engines[modelID]
		loadCh := m.loading[modelID]
		m.mu.RUnlock()

		if loadCh != nil {
			if err := waitLoad(ctx, loadCh, timer, modelID); err != nil {
				return nil, err
			}
			continue
		}
		if eng != nil {
			switch eng.Phase() {
			case engine.PhaseReady, engine.PhaseGenerating:
				return eng, nil
			}
			// failed or mid-transition: take the write path below
		}

		eng, victims, started, err := m.startLoad(modelID)
		if err != nil {
			return nil, err
		}
		m.shutdownVictims(victims)
		if !started {
			// Lost the race to another caller; observe its outcome.
			continue
		}
		return m.runLoad(ctx, modelID, eng)
	}
}

// startLoad claims the load slot for modelID under the write lock,
// evicting idle engines as needed to stay under the cap. started=false
// means the state changed underneath the caller and the ensure loop
// should re-read.
func (m *Manager) startLoad(modelID string) (*engine.Engine, []victim, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, nil, false, closedError{}
	}
	if m.loading[modelID] != nil {
		return nil, nil, false, nil
	}
	eng := m.engines[modelID]
	if eng != nil {
		switch eng.Phase() {
		case engine.PhaseReady, engine.PhaseGenerating:
			return eng, nil, false, nil
		case engine.PhaseFailed:
			// Re-initialize the existing handle in place.
		default:
			// Evicted or shutting down underneath us; replace it.
			delete(m.engines, modelID)
			eng = nil
		}
	}

	if _, ok := m.findModel(modelID); !ok {
		return nil, nil, false, modelNotFoundError{id: modelID}
	}

	var victims []victim
	if eng == nil {
		victims = m.evictForCapacityLocked()
		eng = engine.NewWithConfig(engine.Config{
			Source:          m.src,
			Params:          m.params,
			ShutdownTimeout: m.shutdownTimeout,
			Publisher:       m.pub,
			Logger:          &m.log,
		})
		m.engines[modelID] = eng
	}
	m.loading[modelID] = make(chan struct{})
	m.loadsTotal++
	return eng, victims, true, nil
}

// runLoad initializes eng outside the lock and releases waiters when the
// attempt finishes, success or not.
func (m *Manager) runLoad(ctx context.Context, modelID string, eng *engine.Engine) (*engine.Engine, error) {
	mdl, _ := m.findModel(modelID)
	started := time.Now()
	m.log.Info().Str("model", modelID).Msg("engine load start")

	err := eng.Initialize(ctx, mdl.Path, engine.Params{})

	m.mu.Lock()
	if ch := m.loading[modelID]; ch != nil {
		close(ch)
		delete(m.loading, modelID)
	}
	m.mu.Unlock()

	if err != nil {
		m.log.Warn().Str("model", modelID).Err(err).Msg("engine load failed")
		return nil, err
	}
	m.log.Info().Str("model", modelID).
		Dur("elapsed", time.Since(started)).
		Msg("engine load ready")
	return eng, nil
}

// waitLoad blocks until a concurrent load of id finishes, the caller
// gives up, or the deadline passes.
func waitLoad(ctx context.Context, ch <-chan struct{}, timer *time.Timer, id string) error {
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return waitTimeoutError{id: id}
	}
}
