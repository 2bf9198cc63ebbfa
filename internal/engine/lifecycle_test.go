package engine

import (
	"testing"
	"time"
)

func TestResetIdleEngine(t *testing.T) {
	e := readyEngine(t, &fakeSource{fragments: []string{"x"}})
	if err := e.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got := e.Phase(); got != PhaseReady {
		t.Fatalf("Phase = %s, want %s", got, PhaseReady)
	}
}

func TestResetDropsStaleFragments(t *testing.T) {
	src := &fakeSource{fragments: []string{"old-1 ", "old-2 ", "old-3"}}
	e := readyEngine(t, src)

	// Stall delivery on the first fragment so the rest of the sequence
	// piles up undelivered in the queue.
	release := make(chan struct{})
	sinkA := newRecordSink()
	gA, err := e.StreamGenerate(testCtx(t), "a", &blockingSink{inner: sinkA, release: release})
	if err != nil {
		t.Fatalf("StreamGenerate A: %v", err)
	}
	waitClosedCh(t, sinkA.first, "first fragment of A")

	resetErr := make(chan error, 1)
	go func() { resetErr <- e.Reset() }()

	// Resume delivery only once the reset has rotated the id; everything
	// still queued is then stale.
	deadline := time.Now().Add(2 * time.Second)
	for e.ActiveGeneration() != "" {
		if time.Now().After(deadline) {
			t.Fatal("Reset did not rotate the generation id")
		}
		time.Sleep(time.Millisecond)
	}
	close(release)

	if err := <-resetErr; err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got := e.Phase(); got != PhaseReady {
		t.Fatalf("Phase after Reset = %s, want %s", got, PhaseReady)
	}
	waitDone(t, gA)

	fragments, errs, completes := sinkA.snapshot()
	if len(fragments) != 1 || fragments[0] != "old-1 " {
		t.Fatalf("sink A fragments = %v", fragments)
	}
	if completes != 0 || len(errs) != 1 || errs[0] != "generation superseded" {
		t.Fatalf("sink A terminals: errs=%v completes=%d", errs, completes)
	}
	if got := gA.Reason(); got != ReasonSuperseded {
		t.Fatalf("Reason = %q, want %q", got, ReasonSuperseded)
	}

	// A new generation gets a fresh id and only its own fragments.
	src.fragments = []string{"new-1 ", "new-2"}
	sinkB := newRecordSink()
	gB, err := e.StreamGenerate(testCtx(t), "b", sinkB)
	if err != nil {
		t.Fatalf("StreamGenerate B: %v", err)
	}
	waitDone(t, gB)
	if gB.ID == gA.ID {
		t.Fatal("generation id was reused")
	}
	bFrags, bErrs, bCompletes := sinkB.snapshot()
	if len(bErrs) != 0 || bCompletes != 1 {
		t.Fatalf("sink B terminals: errs=%v completes=%d", bErrs, bCompletes)
	}
	if len(bFrags) != 2 || bFrags[0] != "new-1 " || bFrags[1] != "new-2" {
		t.Fatalf("sink B fragments = %v", bFrags)
	}
}

func TestResetWrongPhase(t *testing.T) {
	e := New(&fakeSource{})
	if err := e.Reset(); !IsLifecycle(err) {
		t.Fatalf("Reset on uninitialized engine: got %v, want lifecycle error", err)
	}

	e = readyEngine(t, &fakeSource{fragments: []string{"x"}})
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := e.Reset(); !IsLifecycle(err) {
		t.Fatalf("Reset on closed engine: got %v, want lifecycle error", err)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	src := &fakeSource{fragments: []string{"x"}}
	e := readyEngine(t, src)
	if _, err := e.Generate(testCtx(t), "hi"); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if got := e.Phase(); got != PhaseClosed {
		t.Fatalf("Phase = %s, want %s", got, PhaseClosed)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("third Shutdown: %v", err)
	}
	if _, closed, _ := src.counts(); closed != 1 {
		t.Fatalf("session closed %d times, want 1", closed)
	}
}

func TestShutdownRejectsFurtherOperations(t *testing.T) {
	e := readyEngine(t, &fakeSource{fragments: []string{"x"}})
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if _, err := e.Generate(testCtx(t), "hi"); !IsLifecycle(err) {
		t.Fatalf("Generate after Shutdown: got %v, want lifecycle error", err)
	}
	if _, err := e.StreamGenerate(testCtx(t), "hi", newRecordSink()); !IsLifecycle(err) {
		t.Fatalf("StreamGenerate after Shutdown: got %v, want lifecycle error", err)
	}
	if err := e.SetParameter(ParamTemperature, 1.0); !IsLifecycle(err) {
		t.Fatalf("SetParameter after Shutdown: got %v, want lifecycle error", err)
	}
	if err := e.Initialize(testCtx(t), modelFile(t), Params{}); !IsLifecycle(err) {
		t.Fatalf("Initialize after Shutdown: got %v, want lifecycle error", err)
	}
}

func TestShutdownUninitialized(t *testing.T) {
	e := New(&fakeSource{})
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown on fresh handle: %v", err)
	}
	if got := e.Phase(); got != PhaseClosed {
		t.Fatalf("Phase = %s, want %s", got, PhaseClosed)
	}
}

func TestShutdownCancelsActiveGeneration(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{fragments: []string{"going ", "gone"}, gate: gate}
	e := readyEngine(t, src)

	sink := newRecordSink()
	g, err := e.StreamGenerate(testCtx(t), "x", sink)
	if err != nil {
		t.Fatalf("StreamGenerate: %v", err)
	}
	waitClosedCh(t, sink.first, "first fragment")

	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	waitDone(t, g)

	_, errs, completes := sink.snapshot()
	if completes != 0 || len(errs) != 1 || errs[0] != "generation canceled" {
		t.Fatalf("terminals: errs=%v completes=%d", errs, completes)
	}
	if got := e.Phase(); got != PhaseClosed {
		t.Fatalf("Phase = %s, want %s", got, PhaseClosed)
	}
	if _, closed, _ := src.counts(); closed != 1 {
		t.Fatalf("session closed %d times, want 1", closed)
	}
}

func TestShutdownReportsLeak(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	src := &fakeSource{fragments: []string{"stuck"}, block: block}

	e := NewWithConfig(Config{Source: src, ShutdownTimeout: 50 * time.Millisecond})
	if err := e.Initialize(testCtx(t), modelFile(t), Params{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	sink := newRecordSink()
	g, err := e.StreamGenerate(testCtx(t), "x", sink)
	if err != nil {
		t.Fatalf("StreamGenerate: %v", err)
	}
	waitClosedCh(t, sink.first, "first fragment")

	err = e.Shutdown()
	if !IsResourceLeak(err) {
		t.Fatalf("Shutdown: got %v, want resource leak", err)
	}
	// The handle still closes so the caller can exit deliberately.
	if got := e.Phase(); got != PhaseClosed {
		t.Fatalf("Phase = %s, want %s", got, PhaseClosed)
	}
	// The stuck worker may still hold the session, so it stays open.
	if _, closed, _ := src.counts(); closed != 0 {
		t.Fatalf("session closed %d times, want 0", closed)
	}

	// The sink is still released with its single terminal.
	waitDone(t, g)
	_, errs, completes := sink.snapshot()
	if completes != 0 || len(errs) != 1 || errs[0] != "generation canceled" {
		t.Fatalf("terminals: errs=%v completes=%d", errs, completes)
	}

	if err := e.Shutdown(); err != nil {
		t.Fatalf("second Shutdown after leak: %v", err)
	}
}

func TestResetReportsLeak(t *testing.T) {
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	src := &fakeSource{fragments: []string{"stuck"}, block: block}

	e := NewWithConfig(Config{Source: src, ShutdownTimeout: 50 * time.Millisecond})
	if err := e.Initialize(testCtx(t), modelFile(t), Params{}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	sink := newRecordSink()
	g, err := e.StreamGenerate(testCtx(t), "x", sink)
	if err != nil {
		t.Fatalf("StreamGenerate: %v", err)
	}
	waitClosedCh(t, sink.first, "first fragment")

	err = e.Reset()
	if !IsResourceLeak(err) {
		t.Fatalf("Reset: got %v, want resource leak", err)
	}
	if got := e.Phase(); got != PhaseReady {
		t.Fatalf("Phase after leaked reset = %s, want %s", got, PhaseReady)
	}
	waitDone(t, g)
	if got := g.Reason(); got != ReasonCanceled {
		t.Fatalf("Reason = %q, want %q", got, ReasonCanceled)
	}
}
