package types

// GenerateRequest represents a text generation request payload.
type GenerateRequest struct {
	// Optional model identifier. If empty, the server default is used.
	// example: tinyllama-q4
	Model string `json:"model,omitempty" example:"tinyllama-q4"`
	// Required prompt text to generate a completion for.
	// example: Explain photosynthesis in two sentences.
	Prompt string `json:"prompt" example:"Explain photosynthesis in two sentences."`
	// If true, stream fragments as NDJSON lines; otherwise return one JSON object.
	// example: true
	Stream bool `json:"stream,omitempty" example:"true"`
	// Sampling temperature for this request only (higher = more random).
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability for this request only.
	// example: 0.95
	TopP *float64 `json:"top_p,omitempty" example:"0.95"`
	// Maximum number of fragments to generate for this request only.
	// example: 256
	MaxGenLen *int `json:"max_gen_len,omitempty" example:"256"`
}

// GenerateResponse is the non-streaming completion payload, and also the
// shape of the final NDJSON line in streaming mode (with Done set).
type GenerateResponse struct {
	// Marks the final line of a stream.
	// example: true
	Done bool `json:"done" example:"true"`
	// Concatenated generated text.
	Content string `json:"content"`
	// Model that served the request.
	// example: tinyllama-q4
	Model string `json:"model" example:"tinyllama-q4"`
	// Identifier of the generation that produced this response.
	// example: 7b0d4f0e-95a4-4f40-9a3f-0d3a2b6f9c11
	GenerationID string `json:"generation_id" example:"7b0d4f0e-95a4-4f40-9a3f-0d3a2b6f9c11"`
	// Why the generation ended: "stop", "length", "canceled", "superseded"
	// or "error".
	// example: stop
	FinishReason string `json:"finish_reason" example:"stop"`
	// Number of fragments delivered.
	// example: 42
	Fragments int `json:"fragments" example:"42"`
	// Error message when the generation ended abnormally mid-stream.
	Error string `json:"error,omitempty"`
}

// CancelRequest asks the server to stop an in-flight generation.
type CancelRequest struct {
	// Model whose generation should be canceled. Defaults to the server default.
	// example: tinyllama-q4
	Model string `json:"model,omitempty" example:"tinyllama-q4"`
	// Generation to cancel. If empty, the model's active generation is targeted.
	// example: 7b0d4f0e-95a4-4f40-9a3f-0d3a2b6f9c11
	GenerationID string `json:"generation_id,omitempty" example:"7b0d4f0e-95a4-4f40-9a3f-0d3a2b6f9c11"`
}

// CancelResponse reports whether a cancellation request took effect.
type CancelResponse struct {
	// True when an in-flight generation matched and was asked to stop.
	// example: true
	Canceled bool `json:"canceled" example:"true"`
}

// ParamsRequest updates engine sampling parameters. Omitted fields are
// left unchanged.
type ParamsRequest struct {
	// Model whose parameters to update. Defaults to the server default.
	// example: tinyllama-q4
	Model string `json:"model,omitempty" example:"tinyllama-q4"`
	// Sampling temperature in [0,2].
	// example: 0.9
	Temperature *float64 `json:"temperature,omitempty" example:"0.9"`
	// Nucleus sampling probability in (0,1].
	// example: 0.95
	TopP *float64 `json:"top_p,omitempty" example:"0.95"`
	// Maximum fragments per generation, positive.
	// example: 512
	MaxGenLen *int `json:"max_gen_len,omitempty" example:"512"`
}

// ResetRequest returns an engine to its idle state, abandoning any
// in-flight generation.
type ResetRequest struct {
	// Model to reset. Defaults to the server default.
	// example: tinyllama-q4
	Model string `json:"model,omitempty" example:"tinyllama-q4"`
}

// ResetResponse acknowledges a reset.
type ResetResponse struct {
	// True when the engine was returned to its idle state.
	// example: true
	Reset bool `json:"reset" example:"true"`
}

// ParamsView mirrors the engine's current sampling parameters.
type ParamsView struct {
	// example: 0.7
	Temperature float64 `json:"temperature" example:"0.7"`
	// example: 0.95
	TopP float64 `json:"top_p" example:"0.95"`
	// example: 1024
	MaxGenLen int `json:"max_gen_len" example:"1024"`
}

// EngineStatus summarizes one engine handle for /status.
type EngineStatus struct {
	// ID of the model this engine serves.
	// example: tinyllama-q4
	ModelID string `json:"model_id" example:"tinyllama-q4"`
	// Current lifecycle phase (uninitialized, loading, ready, generating, closed, failed).
	// example: ready
	Phase string `json:"phase" example:"ready"`
	// Failure reason when phase is "failed".
	FailureReason string `json:"failure_reason,omitempty"`
	// Identifier of the in-flight generation, if any.
	ActiveGeneration string `json:"active_generation,omitempty"`
	// Current sampling parameters.
	Params ParamsView `json:"params"`
	// Last time this engine served a request (unix seconds).
	// example: 1700000000
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Total generations served by this engine.
	// example: 12
	Generations uint64 `json:"generations" example:"12"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Engines currently held by the server.
	Engines []EngineStatus `json:"engines"`
	// Overall server state (e.g., loading, ready).
	// example: ready
	State string `json:"state" example:"ready"`
	// Default model id used when requests omit one.
	// example: tinyllama-q4
	DefaultModel string `json:"default_model,omitempty" example:"tinyllama-q4"`
	// Number of engines currently loading.
	// example: 1
	LoadsInProgress int `json:"loads_in_progress" example:"1"`
	// Total engine loads since start.
	// example: 5
	LoadsTotal uint64 `json:"loads_total" example:"5"`
	// Total idle engines evicted to stay under the engine cap.
	// example: 2
	EvictionsTotal uint64 `json:"evictions_total" example:"2"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// TokenLine is one streamed NDJSON fragment line.
type TokenLine struct {
	// One generated fragment.
	// example: photo
	Token string `json:"token" example:"photo"`
}
