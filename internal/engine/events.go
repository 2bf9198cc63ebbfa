package engine

// Event represents an engine lifecycle event.
// Minimal and stable: name + model path and optional fields via key/values.
type Event struct {
	Name   string
	Model  string
	Fields map[string]any
}

// EventPublisher receives events from the engine. Implementations should
// be lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// publish emits an event through the currently installed publisher. Always
// called with the engine mutex released.
func (e *Engine) publish(name, model string, fields map[string]any) {
	e.mu.Lock()
	pub := e.pub
	e.mu.Unlock()
	pub.Publish(Event{Name: name, Model: model, Fields: fields})
}
