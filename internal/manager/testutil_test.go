package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// testRegistry creates one weights file per id in a temp dir and returns
// the matching registry entries.
func testRegistry(t *testing.T, ids ...string) []types.Model {
	t.Helper()
	dir := t.TempDir()
	models := make([]types.Model, 0, len(ids))
	for _, id := range ids {
		p := filepath.Join(dir, id+".gguf")
		if err := os.WriteFile(p, []byte("GGUF"), 0o644); err != nil {
			t.Fatalf("write model file: %v", err)
		}
		models = append(models, types.Model{ID: id, Name: id, Path: p, Kind: types.ModelKindGGUF})
	}
	return models
}

// fakeSource is a controllable engine.Source for supervisor tests.
type fakeSource struct {
	fragments []string
	openErr   error
	openDelay time.Duration
	// gate, when set, parks Generate after the first fragment until the
	// channel is closed or ctx is canceled.
	gate chan struct{}
	// stuck, when set, parks Generate after the first fragment ignoring
	// ctx, simulating a wedged runtime.
	stuck chan struct{}

	mu     sync.Mutex
	opened int
	closed int
}

func (s *fakeSource) Open(modelPath string) (engine.Session, error) {
	if s.openDelay > 0 {
		time.Sleep(s.openDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opened++
	return &fakeSession{src: s}, nil
}

func (s *fakeSource) counts() (opened, closed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.closed
}

type fakeSession struct {
	src *fakeSource
}

func (s *fakeSession) Generate(ctx context.Context, prompt string, p engine.Params, emit func(string) error) error {
	for i, f := range s.src.fragments {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(f); err != nil {
			return err
		}
		if i == 0 && s.src.gate != nil {
			select {
			case <-s.src.gate:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if i == 0 && s.src.stuck != nil {
			<-s.src.stuck
		}
	}
	return nil
}

func (s *fakeSession) Close() error {
	s.src.mu.Lock()
	s.src.closed++
	s.src.mu.Unlock()
	return nil
}

// newTestManager builds a manager over a fresh temp registry.
func newTestManager(t *testing.T, src engine.Source, ids ...string) (*Manager, []types.Model) {
	t.Helper()
	reg := testRegistry(t, ids...)
	defaultModel := ""
	if len(reg) > 0 {
		defaultModel = reg[0].ID
	}
	m := NewWithConfig(ManagerConfig{
		Registry:        reg,
		DefaultModel:    defaultModel,
		Source:          src,
		ShutdownTimeout: 2 * time.Second,
	})
	t.Cleanup(func() { _ = m.Close() })
	return m, reg
}
