// Package engine implements a streaming generation engine handle: a
// lifecycle state machine around one model session, a worker goroutine per
// generation, and an ordered hand-off queue between the worker and the
// consumer-facing delivery loop. It is structured into small files by
// concern:
//
//   - engine.go: core Engine type, Config, constructors, accessors.
//   - state.go: Phase enum, Params validation, Snapshot.
//   - queue.go: Fragment and the blocking TokenQueue.
//   - sink.go: Sink interface, SinkFuncs adapter, internal collector.
//   - source.go: Source/Session interfaces over model backends.
//   - generate.go: StreamGenerate/Generate, worker and delivery loops, Cancel.
//   - lifecycle.go: Initialize, SetParameter, Reset, Shutdown.
//   - errors.go: error types and predicates (IsLifecycle, IsConfig, ...).
//   - events.go, eventpub_memory.go, eventpub_zerolog.go: event publishing.
//   - metrics.go: Prometheus collectors.
//
// Concurrency contract: every phase and generation-identity transition
// happens under one mutex; loading and generating run with the mutex
// released. The sink is only ever invoked from the delivery goroutine,
// never from the worker driving the source.
package engine
