package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestStreamGenerateOrdering(t *testing.T) {
	var want []string
	for i := 0; i < 50; i++ {
		want = append(want, fmt.Sprintf("frag-%03d ", i))
	}
	src := &fakeSource{fragments: want}
	e := readyEngine(t, src)

	sink := newRecordSink()
	g, err := e.StreamGenerate(testCtx(t), "count", sink)
	if err != nil {
		t.Fatalf("StreamGenerate: %v", err)
	}
	waitDone(t, g)

	fragments, errs, completes := sink.snapshot()
	if len(errs) != 0 || completes != 1 {
		t.Fatalf("terminals: errs=%v completes=%d", errs, completes)
	}
	if len(fragments) != len(want) {
		t.Fatalf("delivered %d fragments, want %d", len(fragments), len(want))
	}
	for i := range want {
		if fragments[i] != want[i] {
			t.Fatalf("fragment %d = %q, want %q", i, fragments[i], want[i])
		}
	}
	if got := g.Reason(); got != ReasonStop {
		t.Fatalf("Reason = %q, want %q", got, ReasonStop)
	}
	if got := g.Fragments(); got != 50 {
		t.Fatalf("Fragments = %d, want 50", got)
	}
	if got := e.Phase(); got != PhaseReady {
		t.Fatalf("Phase = %s, want %s", got, PhaseReady)
	}
}

func TestStreamGenerateRejectsConcurrent(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{fragments: []string{"first ", "second"}, gate: gate}
	e := readyEngine(t, src)

	sinkA := newRecordSink()
	gA, err := e.StreamGenerate(testCtx(t), "a", sinkA)
	if err != nil {
		t.Fatalf("StreamGenerate A: %v", err)
	}
	waitClosedCh(t, sinkA.first, "first fragment of A")

	sinkB := newRecordSink()
	gB, err := e.StreamGenerate(testCtx(t), "b", sinkB)
	if !IsAlreadyGenerating(err) {
		t.Fatalf("StreamGenerate B: got %v, want already-generating", err)
	}
	if gB != nil {
		t.Fatalf("StreamGenerate B returned a handle: %v", gB.ID)
	}

	close(gate)
	waitDone(t, gA)

	// A is unaffected by the rejected call.
	fragments, errs, completes := sinkA.snapshot()
	if len(errs) != 0 || completes != 1 {
		t.Fatalf("sink A terminals: errs=%v completes=%d", errs, completes)
	}
	if got := fmt.Sprint(fragments); got != "[first  second]" {
		t.Fatalf("sink A fragments = %v", fragments)
	}
	// B never reached the sink and never started a worker.
	if bf, be, bc := sinkB.snapshot(); len(bf) != 0 || len(be) != 0 || bc != 0 {
		t.Fatalf("sink B was touched: %v %v %d", bf, be, bc)
	}
	if _, _, genCalls := src.counts(); genCalls != 1 {
		t.Fatalf("genCalls = %d, want 1", genCalls)
	}
	if got := e.Snapshot().Generations; got != 1 {
		t.Fatalf("Generations = %d, want 1", got)
	}
}

func TestStreamGenerateConcurrentCallersOneWinner(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{fragments: []string{"w"}, gate: gate}
	e := readyEngine(t, src)

	const callers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []*Generation
		losers  int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := e.StreamGenerate(testCtx(t), fmt.Sprintf("p%d", i), newRecordSink())
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, g)
				return
			}
			if IsAlreadyGenerating(err) {
				losers++
			}
		}(i)
	}
	wg.Wait()

	if len(winners) != 1 || losers != callers-1 {
		t.Fatalf("winners=%d losers=%d, want 1/%d", len(winners), losers, callers-1)
	}
	if _, _, genCalls := src.counts(); genCalls != 1 {
		t.Fatalf("genCalls = %d, want 1", genCalls)
	}
	close(gate)
	waitDone(t, winners[0])
}

func TestCancelMidStream(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{fragments: []string{"some ", "more"}, gate: gate}
	e := readyEngine(t, src)

	sink := newRecordSink()
	g, err := e.StreamGenerate(testCtx(t), "x", sink)
	if err != nil {
		t.Fatalf("StreamGenerate: %v", err)
	}
	waitClosedCh(t, sink.first, "first fragment")

	if !e.Cancel(g.ID) {
		t.Fatal("Cancel returned false for the active generation")
	}
	waitDone(t, g)

	fragments, errs, completes := sink.snapshot()
	if len(fragments) != 1 || fragments[0] != "some " {
		t.Fatalf("fragments = %v", fragments)
	}
	if completes != 0 || len(errs) != 1 || errs[0] != "generation canceled" {
		t.Fatalf("terminals: errs=%v completes=%d", errs, completes)
	}
	if got := g.Reason(); got != ReasonCanceled {
		t.Fatalf("Reason = %q, want %q", got, ReasonCanceled)
	}
	if got := e.Phase(); got != PhaseReady {
		t.Fatalf("Phase after cancel = %s, want %s", got, PhaseReady)
	}

	// The id is spent: a second cancel is a no-op.
	if e.Cancel(g.ID) {
		t.Fatal("Cancel returned true for a finished generation")
	}
}

func TestCancelUnknownID(t *testing.T) {
	e := readyEngine(t, &fakeSource{fragments: []string{"x"}})
	if e.Cancel("no-such-generation") {
		t.Fatal("Cancel returned true for an unknown id")
	}
	if e.Cancel("") {
		t.Fatal("Cancel returned true for an empty id")
	}
	if e.CancelActive() {
		t.Fatal("CancelActive returned true with nothing in flight")
	}
}

func TestGenerationHandleCancel(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{fragments: []string{"one ", "two"}, gate: gate}
	e := readyEngine(t, src)

	sink := newRecordSink()
	g, err := e.StreamGenerate(testCtx(t), "x", sink)
	if err != nil {
		t.Fatalf("StreamGenerate: %v", err)
	}
	waitClosedCh(t, sink.first, "first fragment")
	if !g.Cancel() {
		t.Fatal("handle Cancel returned false")
	}
	waitDone(t, g)
	if got := g.Reason(); got != ReasonCanceled {
		t.Fatalf("Reason = %q, want %q", got, ReasonCanceled)
	}
}

func TestMaxGenLenForcesEndOfStream(t *testing.T) {
	src := &fakeSource{fragments: []string{"a", "b", "c", "d", "e", "f", "g", "h"}}
	e := readyEngine(t, src)

	p := DefaultParams()
	p.MaxGenLen = 3
	sink := newRecordSink()
	g, err := e.StreamGenerateWithParams(testCtx(t), "long", p, sink)
	if err != nil {
		t.Fatalf("StreamGenerateWithParams: %v", err)
	}
	waitDone(t, g)

	fragments, errs, completes := sink.snapshot()
	if len(fragments) != 3 {
		t.Fatalf("delivered %d fragments, want 3", len(fragments))
	}
	// Overrunning the cap ends the stream normally, it is not an error.
	if len(errs) != 0 || completes != 1 {
		t.Fatalf("terminals: errs=%v completes=%d", errs, completes)
	}
	if got := g.Reason(); got != ReasonLength {
		t.Fatalf("Reason = %q, want %q", got, ReasonLength)
	}
}

func TestStreamGenerateNilSink(t *testing.T) {
	e := readyEngine(t, &fakeSource{fragments: []string{"x"}})
	if _, err := e.StreamGenerate(testCtx(t), "x", nil); !IsConfig(err) {
		t.Fatalf("StreamGenerate with nil sink: got %v, want config error", err)
	}
}

func TestStreamGenerateSourcePanic(t *testing.T) {
	src := &fakeSource{fragments: []string{"pre "}, panicMsg: "kv cache torn"}
	e := readyEngine(t, src)

	sink := newRecordSink()
	g, err := e.StreamGenerate(testCtx(t), "x", sink)
	if err != nil {
		t.Fatalf("StreamGenerate: %v", err)
	}
	waitDone(t, g)

	_, errs, completes := sink.snapshot()
	if completes != 0 || len(errs) != 1 {
		t.Fatalf("terminals: errs=%v completes=%d", errs, completes)
	}
	if want := "source panic: kv cache torn"; errs[0] != want {
		t.Fatalf("error = %q, want %q", errs[0], want)
	}
	// A panicking source is contained like any failed generation.
	if got := e.Phase(); got != PhaseReady {
		t.Fatalf("Phase = %s, want %s", got, PhaseReady)
	}
}

func TestStreamGenerateCallerContextCancel(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeSource{fragments: []string{"tick ", "tock"}, gate: gate}
	e := readyEngine(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink := newRecordSink()
	g, err := e.StreamGenerate(ctx, "x", sink)
	if err != nil {
		t.Fatalf("StreamGenerate: %v", err)
	}
	waitClosedCh(t, sink.first, "first fragment")
	cancel()
	waitDone(t, g)

	_, errs, completes := sink.snapshot()
	if completes != 0 || len(errs) != 1 || errs[0] != "generation canceled" {
		t.Fatalf("terminals: errs=%v completes=%d", errs, completes)
	}
	if got := e.Phase(); got != PhaseReady {
		t.Fatalf("Phase = %s, want %s", got, PhaseReady)
	}
}
