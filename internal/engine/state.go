package engine

import "time"

// Phase is the lifecycle state of an engine handle.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseLoading       Phase = "loading"
	PhaseReady         Phase = "ready"
	PhaseGenerating    Phase = "generating"
	PhaseClosed        Phase = "closed"
	PhaseFailed        Phase = "failed"
)

// Sampling parameter defaults, matching the runtime configs shipped with
// common on-device models.
const (
	DefaultTemperature = 0.7
	DefaultTopP        = 0.95
	DefaultMaxGenLen   = 1024
)

// Params holds the sampling configuration applied to a generation. The
// zero value means "package defaults" where a whole Params is optional.
type Params struct {
	// Temperature in [0,2]; higher is more random.
	Temperature float64
	// TopP nucleus sampling probability in (0,1].
	TopP float64
	// MaxGenLen caps the number of fragments per generation; positive.
	MaxGenLen int
}

// DefaultParams returns the package defaults.
func DefaultParams() Params {
	return Params{
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxGenLen:   DefaultMaxGenLen,
	}
}

// Validate checks every field against its allowed range.
func (p Params) Validate() error {
	if p.Temperature < 0 || p.Temperature > 2 {
		return ErrConfig(ParamTemperature, "must be in [0,2]")
	}
	if p.TopP <= 0 || p.TopP > 1 {
		return ErrConfig(ParamTopP, "must be in (0,1]")
	}
	if p.MaxGenLen <= 0 {
		return ErrConfig(ParamMaxGenLen, "must be positive")
	}
	return nil
}

// Snapshot is a read-only view of an engine handle.
type Snapshot struct {
	Phase            Phase
	FailureReason    string
	ModelPath        string
	Params           Params
	ActiveGeneration string
	Generations      uint64
	LastUsed         time.Time
}
