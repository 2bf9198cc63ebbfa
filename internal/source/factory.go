package source

import (
	"fmt"
	"time"

	"inferd/internal/engine"
)

// Options configure source construction through ForName.
type Options struct {
	// StreamDelay is the scripted source's inter-fragment pause.
	StreamDelay time.Duration
	// CtxSize is the llama context window, in tokens.
	CtxSize int
	// Threads is the llama worker thread count.
	Threads int
}

// ForName builds the source named by configuration: "scripted" (the
// default) or "llama".
func ForName(name string, opts Options) (engine.Source, error) {
	switch name {
	case "", "scripted":
		return NewScriptedWithConfig(ScriptedConfig{Delay: opts.StreamDelay}), nil
	case "llama":
		return NewLlama(opts.CtxSize, opts.Threads), nil
	default:
		return nil, fmt.Errorf("unknown source %q (valid: scripted, llama)", name)
	}
}

// LlamaBuilt reports whether this binary carries the in-process llama
// runtime.
func LlamaBuilt() bool { return llamaBuilt }
