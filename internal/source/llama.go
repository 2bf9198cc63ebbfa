//go:build llama

package source

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"

	"inferd/internal/engine"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

type llamaSource struct {
	ctxSize int
	threads int
}

// NewLlama returns a source backed by the in-process llama.cpp runtime.
// Zero values pick working defaults.
func NewLlama(ctxSize, threads int) engine.Source {
	return &llamaSource{ctxSize: orDefault(ctxSize, 2048), threads: orDefault(threads, 4)}
}

func (s *llamaSource) Open(modelPath string) (engine.Session, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	m, err := llama.New(modelPath, llama.SetContext(s.ctxSize))
	if err != nil {
		return nil, err
	}
	return &llamaSession{model: m, threads: s.threads}, nil
}

// llamaSession owns one loaded model.
type llamaSession struct {
	model   *llama.LLama
	threads int
}

func (s *llamaSession) Generate(ctx context.Context, prompt string, p engine.Params, emit func(string) error) error {
	if s.model == nil {
		return errors.New("llama model not initialized")
	}

	// Bridge token streaming to emit and respect cancellation. Returning
	// false from the callback stops the prediction loop.
	s.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		return emit(tok) == nil
	})

	po := predictOptions(p, s.threads)
	if _, err := s.model.Predict(prompt, po...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (s *llamaSession) Close() error {
	if s.model != nil {
		s.model.Free()
		s.model = nil
	}
	return nil
}

// predictOptions converts engine parameters into go-llama.cpp options.
func predictOptions(p engine.Params, threads int) []llama.PredictOption {
	return []llama.PredictOption{
		llama.SetTokens(p.MaxGenLen),
		llama.SetThreads(threads),
		llama.SetTemperature(float32(p.Temperature)),
		llama.SetTopP(float32(p.TopP)),
	}
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
