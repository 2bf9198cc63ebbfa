// Package manager supervises one generation engine per model id. It is
// structured into small files by concern:
//
//   - manager.go: core Manager type, constructor delegation, Ready,
//     ListModels, Close.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies
//     defaults.
//   - errors.go: error types and predicate helpers (IsModelNotFound,
//     IsClosed).
//   - ensure.go: EnsureEngine lifecycle (fast path, load waiting,
//     create + initialize).
//   - evict.go: LRU eviction to stay under the engine cap.
//   - generate.go: Generate entry point, NDJSON streaming, per-request
//     parameter merging.
//   - ops.go: Cancel, SetParams, Reset routing.
//   - status.go: Status reporting for /status.
//
// External packages should treat this package as the orchestration layer
// and use public methods only (New/NewWithConfig, Ready, ListModels,
// Status, Generate, Cancel, SetParams, Reset, Close). Internal fields are
// subject to change.
package manager
