package engine

import "context"

// Source opens generation sessions for model resources. It is the one
// external dependency the engine drives; implementations live in
// internal/source.
type Source interface {
	// Open prepares a session for the model at path. It is called during
	// Initialize with the engine lock released and may take long.
	Open(modelPath string) (Session, error)
}

// Session produces text for prompts against one loaded model. A session
// serves one generation at a time; the engine serializes calls.
type Session interface {
	// Generate emits fragments for prompt in production order, calling
	// emit once per fragment. It returns when the sequence is exhausted,
	// when emit returns a non-nil error, or when ctx is canceled. The
	// engine treats checkpoints between fragments as the cooperative
	// cancellation points.
	Generate(ctx context.Context, prompt string, p Params, emit func(string) error) error
	// Close releases the session. Called exactly once, during Shutdown.
	Close() error
}
