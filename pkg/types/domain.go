package types

// Model resource layouts.
const (
	ModelKindGGUF   = "gguf"
	ModelKindBundle = "bundle"
)

// Model represents a discoverable model resource on disk: either a single
// weights file or a bundle directory carrying its own config file.
type Model struct {
	// Stable identifier for the model.
	// example: tinyllama-q4
	ID string `json:"id" example:"tinyllama-q4"`
	// Human-friendly name.
	// example: TinyLlama (Q4)
	Name string `json:"name" example:"TinyLlama (Q4)"`
	// Absolute path to the model file or bundle directory.
	// example: /home/user/models/TinyLlama.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/TinyLlama.Q4_K_M.gguf"`
	// Resource layout: "gguf" for single files, "bundle" for directories.
	// example: gguf
	Kind string `json:"kind" example:"gguf"`
}
