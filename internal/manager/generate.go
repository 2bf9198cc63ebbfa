package manager

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"inferd/internal/engine"
	"inferd/pkg/types"
)

// Generate runs one generation and writes the response to w. With
// req.Stream it writes NDJSON token lines followed by a final done line;
// otherwise a single JSON object. flush, when non-nil, is called after
// every line.
func (m *Manager) Generate(ctx context.Context, req types.GenerateRequest, w io.Writer, flush func()) error {
	modelID, err := m.resolveModelID(req.Model)
	if err != nil {
		return err
	}
	eng, err := m.EnsureEngine(ctx, modelID)
	if err != nil {
		return err
	}
	p := mergeParams(eng.Params(), req)
	if req.Stream {
		return m.generateStream(ctx, eng, modelID, req.Prompt, p, w, flush)
	}
	return m.generateOnce(ctx, eng, modelID, req.Prompt, p, w, flush)
}

// generateOnce blocks until the generation finishes and writes one JSON
// object. Error terminals surface as errors, not payloads.
func (m *Manager) generateOnce(ctx context.Context, eng *engine.Engine, modelID, prompt string, p engine.Params, w io.Writer, flush func()) error {
	var (
		b      strings.Builder
		genErr error
	)
	g, err := eng.StreamGenerateWithParams(ctx, prompt, p, engine.SinkFuncs{
		OnDeliver: func(fragment string) { b.WriteString(fragment) },
		OnError:   func(msg string) { genErr = engine.ErrGeneration(msg) },
	})
	if err != nil {
		return err
	}
	<-g.Done()
	if genErr != nil {
		return genErr
	}
	return writeJSONLine(w, flush, types.GenerateResponse{
		Done:         true,
		Content:      b.String(),
		Model:        modelID,
		GenerationID: g.ID,
		FinishReason: g.Reason(),
		Fragments:    g.Fragments(),
	})
}

// generateStream writes token lines as they arrive and always ends with
// a done line; abnormal terminals ride in-band on the final line because
// the response status is already committed.
func (m *Manager) generateStream(ctx context.Context, eng *engine.Engine, modelID, prompt string, p engine.Params, w io.Writer, flush func()) error {
	sink := &ndjsonSink{w: w, flush: flush}
	g, err := eng.StreamGenerateWithParams(ctx, prompt, p, sink)
	if err != nil {
		return err
	}
	<-g.Done()
	if sink.werr != nil {
		// Client went away mid-stream; nothing left to tell it.
		return sink.werr
	}
	return writeJSONLine(w, flush, types.GenerateResponse{
		Done:         true,
		Content:      sink.b.String(),
		Model:        modelID,
		GenerationID: g.ID,
		FinishReason: g.Reason(),
		Fragments:    g.Fragments(),
		Error:        sink.errMsg,
	})
}

// ndjsonSink bridges the engine's sink calls onto an NDJSON stream. All
// methods run on the delivery goroutine; the manager reads the fields
// only after the generation's done channel closes.
type ndjsonSink struct {
	w      io.Writer
	flush  func()
	b      strings.Builder
	werr   error
	errMsg string
}

func (s *ndjsonSink) Deliver(fragment string) {
	s.b.WriteString(fragment)
	if s.werr != nil {
		return
	}
	line, err := json.Marshal(types.TokenLine{Token: fragment})
	if err != nil {
		s.werr = err
		return
	}
	if _, err := s.w.Write(append(line, '\n')); err != nil {
		s.werr = err
		return
	}
	if s.flush != nil {
		s.flush()
	}
}

func (s *ndjsonSink) Error(msg string) { s.errMsg = msg }

func (s *ndjsonSink) Complete() {}

// mergeParams overlays the request's explicit fields on the engine's
// current parameters. The engine validates the merged set and applies it
// to that generation only.
func mergeParams(base engine.Params, req types.GenerateRequest) engine.Params {
	p := base
	if req.Temperature != nil {
		p.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		p.TopP = *req.TopP
	}
	if req.MaxGenLen != nil {
		p.MaxGenLen = *req.MaxGenLen
	}
	return p
}

func writeJSONLine(w io.Writer, flush func(), v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(line, '\n')); err != nil {
		return err
	}
	if flush != nil {
		flush()
	}
	return nil
}
