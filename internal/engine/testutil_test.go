package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// testCtx returns a context canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// modelFile creates a placeholder model file and returns its path.
func modelFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiny.gguf")
	if err := os.WriteFile(path, []byte("gguf"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// fakeSource hands out sessions that replay a fixed fragment sequence.
// The shaping fields (fragments, delay, gate, block, errors) may only
// change while no generation is running; counters are guarded by mu.
type fakeSource struct {
	fragments []string
	openErr   error         // returned by Open
	genErr    error         // returned by Generate after the fragments
	panicMsg  string        // when set, Generate panics after the fragments
	delay     time.Duration // pause before each fragment
	gate      chan struct{} // when set, Generate parks here after the first fragment
	block     chan struct{} // when set, Generate parks here ignoring ctx

	mu       sync.Mutex
	opened   int
	closed   int
	genCalls int
}

func (s *fakeSource) Open(modelPath string) (Session, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.mu.Lock()
	s.opened++
	s.mu.Unlock()
	return &fakeSession{src: s}, nil
}

func (s *fakeSource) counts() (opened, closed, genCalls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened, s.closed, s.genCalls
}

type fakeSession struct {
	src *fakeSource
}

func (f *fakeSession) Generate(ctx context.Context, prompt string, p Params, emit func(string) error) error {
	src := f.src
	src.mu.Lock()
	src.genCalls++
	src.mu.Unlock()

	for i, frag := range src.fragments {
		if src.delay > 0 {
			select {
			case <-time.After(src.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(frag); err != nil {
			return err
		}
		if src.gate != nil && i == 0 {
			select {
			case <-src.gate:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if src.block != nil {
		<-src.block
	}
	if src.panicMsg != "" {
		panic(src.panicMsg)
	}
	return src.genErr
}

func (f *fakeSession) Close() error {
	f.src.mu.Lock()
	f.src.closed++
	f.src.mu.Unlock()
	return nil
}

// recordSink records every sink call for assertions. first closes on the
// first Deliver, terminal on the first Error or Complete.
type recordSink struct {
	first    chan struct{}
	terminal chan struct{}

	mu        sync.Mutex
	fragments []string
	errs      []string
	completes int

	firstOnce sync.Once
	termOnce  sync.Once
}

func newRecordSink() *recordSink {
	return &recordSink{
		first:    make(chan struct{}),
		terminal: make(chan struct{}),
	}
}

func (r *recordSink) Deliver(fragment string) {
	r.mu.Lock()
	r.fragments = append(r.fragments, fragment)
	r.mu.Unlock()
	r.firstOnce.Do(func() { close(r.first) })
}

func (r *recordSink) Error(msg string) {
	r.mu.Lock()
	r.errs = append(r.errs, msg)
	r.mu.Unlock()
	r.termOnce.Do(func() { close(r.terminal) })
}

func (r *recordSink) Complete() {
	r.mu.Lock()
	r.completes++
	r.mu.Unlock()
	r.termOnce.Do(func() { close(r.terminal) })
}

func (r *recordSink) text() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.fragments, "")
}

func (r *recordSink) snapshot() (fragments, errs []string, completes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.fragments...), append([]string(nil), r.errs...), r.completes
}

// blockingSink parks delivery on the first fragment until release is
// closed, letting tests pile up a backlog in the queue.
type blockingSink struct {
	inner   *recordSink
	release chan struct{}
	once    sync.Once
}

func (b *blockingSink) Deliver(fragment string) {
	b.inner.Deliver(fragment)
	b.once.Do(func() { <-b.release })
}

func (b *blockingSink) Error(msg string) { b.inner.Error(msg) }

func (b *blockingSink) Complete() { b.inner.Complete() }

// readyEngine builds an initialized engine over src.
func readyEngine(t *testing.T, src *fakeSource) *Engine {
	t.Helper()
	e := NewWithConfig(Config{Source: src, ShutdownTimeout: 2 * time.Second})
	if err := e.Initialize(testCtx(t), modelFile(t), Params{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return e
}

// waitDone fails the test if g does not finish promptly.
func waitDone(t *testing.T, g *Generation) {
	t.Helper()
	select {
	case <-g.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("generation %s did not finish", g.ID)
	}
}

// waitClosedCh fails the test if ch does not close promptly.
func waitClosedCh(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}
