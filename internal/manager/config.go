package manager

import (
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxEngines = 4
	defaultMaxWait    = 30 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Registry lists the models the manager may load.
	Registry []types.Model
	// DefaultModel is used when a request omits the model id.
	DefaultModel string
	// Source opens generation sessions for every engine. Required.
	Source engine.Source
	// MaxEngines caps how many engines are held at once. The cap is
	// advisory when every engine is busy.
	MaxEngines int
	// MaxWait bounds how long a caller waits for another caller's load
	// of the same model.
	MaxWait time.Duration
	// ShutdownTimeout is handed to each engine.
	ShutdownTimeout time.Duration
	// Params are the initial sampling parameters for new engines.
	Params engine.Params
	// Publisher receives engine lifecycle events; nil drops them.
	Publisher engine.EventPublisher
	// Logger, when set, records manager activity.
	Logger *zerolog.Logger
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		engines:         make(map[string]*engine.Engine),
		loading:         make(map[string]chan struct{}),
		registry:        cfg.Registry,
		defaultModel:    cfg.DefaultModel,
		src:             cfg.Source,
		maxEngines:      cfg.MaxEngines,
		maxWait:         cfg.MaxWait,
		shutdownTimeout: cfg.ShutdownTimeout,
		params:          cfg.Params,
		pub:             cfg.Publisher,
		log:             zerolog.Nop(),
		startTime:       time.Now(),
	}
	if m.maxEngines <= 0 {
		m.maxEngines = defaultMaxEngines
	}
	if m.maxWait <= 0 {
		m.maxWait = defaultMaxWait
	}
	if cfg.Logger != nil {
		m.log = *cfg.Logger
	}
	return m
}
