//go:build !llama

package source

// No-CGO stub compiled when the 'llama' build tag is not set, keeping
// default builds and CI CGO-free. Open fails fast instead of mocking
// inference; the real source lives in llama.go (tagged 'llama').

import (
	"errors"

	"inferd/internal/engine"
)

var llamaBuilt = false

type llamaSource struct{}

func NewLlama(ctxSize, threads int) engine.Source {
	return llamaSource{}
}

func (llamaSource) Open(modelPath string) (engine.Session, error) {
	return nil, errors.New("llama support not built (missing 'llama' build tag)")
}
