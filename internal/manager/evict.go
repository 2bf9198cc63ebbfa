package manager

import (
	"time"

	"inferd/internal/engine"
)

// victim is an engine removed from the map and awaiting shutdown outside
// the manager lock.
type victim struct {
	id  string
	eng *engine.Engine
}

// evictForCapacityLocked removes LRU idle engines until a new engine fits
// under the cap. Engines with a generation in flight are never evicted,
// so the cap is advisory when everything is busy. Caller holds the write
// lock.
func (m *Manager) evictForCapacityLocked() []victim {
	var out []victim
	for len(m.engines) >= m.maxEngines {
		var (
			vid    string
			veng   *engine.Engine
			oldest time.Time
		)
		for id, eng := range m.engines {
			s := eng.Snapshot()
			switch s.Phase {
			case engine.PhaseReady, engine.PhaseFailed:
				// idle, evictable
			default:
				continue
			}
			if s.ActiveGeneration != "" {
				continue
			}
			if veng == nil || s.LastUsed.Before(oldest) {
				vid, veng, oldest = id, eng, s.LastUsed
			}
		}
		if veng == nil {
			return out
		}
		delete(m.engines, vid)
		m.evictions++
		out = append(out, victim{id: vid, eng: veng})
	}
	return out
}

// shutdownVictims closes evicted engines. Runs without the manager lock:
// an idle engine's Shutdown is quick but may still touch the source.
func (m *Manager) shutdownVictims(victims []victim) {
	for _, v := range victims {
		if err := v.eng.Shutdown(); err != nil {
			m.log.Error().Str("model", v.id).Err(err).Msg("evicted engine shutdown")
			continue
		}
		m.log.Info().Str("model", v.id).Msg("engine evicted")
	}
}
