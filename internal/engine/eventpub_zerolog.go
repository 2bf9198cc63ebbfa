package engine

import "github.com/rs/zerolog"

// LogPublisher forwards engine events to a zerolog logger.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(l zerolog.Logger) *LogPublisher { return &LogPublisher{log: l} }

func (p *LogPublisher) Publish(e Event) {
	ev := p.log.Info().Str("event", e.Name)
	if e.Model != "" {
		ev = ev.Str("model", e.Model)
	}
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg("engine")
}
