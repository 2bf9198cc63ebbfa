package manager

import (
	"sort"
	"time"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	resp := types.StatusResponse{
		DefaultModel:   m.defaultModel,
		LoadsTotal:     m.loadsTotal,
		EvictionsTotal: m.evictions,
		UptimeSeconds:  int64(now.Sub(m.startTime) / time.Second),
		ServerTimeUnix: now.Unix(),
	}
	resp.Engines = make([]types.EngineStatus, 0, len(m.engines))

	var ready, loading, failed int
	for id, eng := range m.engines {
		s := eng.Snapshot()
		switch s.Phase {
		case engine.PhaseReady, engine.PhaseGenerating:
			ready++
		case engine.PhaseLoading:
			loading++
		case engine.PhaseFailed:
			failed++
		}
		var lastUsed int64
		if !s.LastUsed.IsZero() {
			lastUsed = s.LastUsed.Unix()
		}
		resp.Engines = append(resp.Engines, types.EngineStatus{
			ModelID:          id,
			Phase:            string(s.Phase),
			FailureReason:    s.FailureReason,
			ActiveGeneration: s.ActiveGeneration,
			Params: types.ParamsView{
				Temperature: s.Params.Temperature,
				TopP:        s.Params.TopP,
				MaxGenLen:   s.Params.MaxGenLen,
			},
			LastUsed:    lastUsed,
			Generations: s.Generations,
		})
	}
	sort.Slice(resp.Engines, func(i, j int) bool {
		return resp.Engines[i].ModelID < resp.Engines[j].ModelID
	})
	resp.LoadsInProgress = loading

	switch {
	case m.closed:
		resp.State = "closed"
	case ready > 0:
		resp.State = "ready"
	case loading > 0:
		resp.State = "loading"
	case failed > 0:
		resp.State = "error"
	default:
		resp.State = "idle"
	}
	return resp
}
