package engine

import "strings"

// Sink receives one generation's output. Deliver is called zero or more
// times in production order, then exactly one of Error or Complete. All
// calls happen on the delivery goroutine, never on the worker driving the
// source.
type Sink interface {
	Deliver(fragment string)
	Error(msg string)
	Complete()
}

// SinkFuncs adapts plain functions to the Sink interface. Nil fields are
// no-ops.
type SinkFuncs struct {
	OnDeliver  func(fragment string)
	OnError    func(msg string)
	OnComplete func()
}

func (s SinkFuncs) Deliver(fragment string) {
	if s.OnDeliver != nil {
		s.OnDeliver(fragment)
	}
}

func (s SinkFuncs) Error(msg string) {
	if s.OnError != nil {
		s.OnError(msg)
	}
}

func (s SinkFuncs) Complete() {
	if s.OnComplete != nil {
		s.OnComplete()
	}
}

// collectSink accumulates fragments for the synchronous Generate form.
// Fields are written by the delivery goroutine and read only after the
// generation's done channel closes.
type collectSink struct {
	b   strings.Builder
	err error
}

func (c *collectSink) Deliver(fragment string) { c.b.WriteString(fragment) }

func (c *collectSink) Error(msg string) { c.err = ErrGeneration(msg) }

func (c *collectSink) Complete() {}

func (c *collectSink) text() string { return c.b.String() }
