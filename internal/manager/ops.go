package manager

import (
	"context"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Cancel asks the engine serving req.Model to stop a generation. With an
// empty GenerationID the active generation is targeted. Unknown models
// and idle engines report false.
func (m *Manager) Cancel(req types.CancelRequest) bool {
	modelID, err := m.resolveModelID(req.Model)
	if err != nil {
		return false
	}
	m.mu.RLock()
	eng := m.engines[modelID]
	m.mu.RUnlock()
	if eng == nil {
		return false
	}
	if req.GenerationID == "" {
		return eng.CancelActive()
	}
	return eng.Cancel(req.GenerationID)
}

// SetParams applies the request's explicit fields to the engine's
// defaults, loading the engine first if needed, and returns the resulting
// parameter set. Validation failures leave the engine unchanged.
func (m *Manager) SetParams(ctx context.Context, req types.ParamsRequest) (types.ParamsView, error) {
	modelID, err := m.resolveModelID(req.Model)
	if err != nil {
		return types.ParamsView{}, err
	}
	eng, err := m.EnsureEngine(ctx, modelID)
	if err != nil {
		return types.ParamsView{}, err
	}
	if req.Temperature != nil {
		if err := eng.SetParameter(engine.ParamTemperature, *req.Temperature); err != nil {
			return types.ParamsView{}, err
		}
	}
	if req.TopP != nil {
		if err := eng.SetParameter(engine.ParamTopP, *req.TopP); err != nil {
			return types.ParamsView{}, err
		}
	}
	if req.MaxGenLen != nil {
		if err := eng.SetParameter(engine.ParamMaxGenLen, *req.MaxGenLen); err != nil {
			return types.ParamsView{}, err
		}
	}
	p := eng.Params()
	return types.ParamsView{Temperature: p.Temperature, TopP: p.TopP, MaxGenLen: p.MaxGenLen}, nil
}

// Reset returns req.Model's engine to its idle state, abandoning any
// in-flight generation. A model with no live engine resets to nothing
// and succeeds.
func (m *Manager) Reset(req types.ResetRequest) error {
	modelID, err := m.resolveModelID(req.Model)
	if err != nil {
		return err
	}
	if _, ok := m.findModel(modelID); !ok {
		return modelNotFoundError{id: modelID}
	}
	m.mu.RLock()
	eng := m.engines[modelID]
	m.mu.RUnlock()
	if eng == nil {
		return nil
	}
	return eng.Reset()
}
