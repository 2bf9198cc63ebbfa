package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inferd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	Status() types.StatusResponse
	Generate(ctx context.Context, req types.GenerateRequest, w io.Writer, flush func()) error
	Cancel(req types.CancelRequest) bool
	SetParams(ctx context.Context, req types.ParamsRequest) (types.ParamsView, error)
	Reset(req types.ResetRequest) error
	Ready() bool
}

// NewMux assembles the router with all middlewares and routes.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints; NDJSON streams pass through.
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/models", handleModels(svc))
	r.Get("/status", handleStatus(svc))
	r.Post("/generate", handleGenerate(svc))
	r.Post("/cancel", handleCancel(svc))
	r.Post("/params", handleParams(svc))
	r.Post("/reset", handleReset(svc))
	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(svc))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

// handleModels lists the models the server can load.
//
//	@Summary      List models
//	@Description  Lists the models discovered in the configured models directory.
//	@Tags         models
//	@Produce      json
//	@Success      200 {object} types.ModelsResponse
//	@Router       /models [get]
func handleModels(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, types.ModelsResponse{Models: svc.ListModels()})
	}
}

// handleStatus reports per-engine state.
//
//	@Summary      Server status
//	@Description  Reports every engine's phase, parameters and counters.
//	@Tags         status
//	@Produce      json
//	@Success      200 {object} types.StatusResponse
//	@Router       /status [get]
func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Status())
	}
}

// handleGenerate runs one generation, streaming NDJSON when requested.
//
//	@Summary      Generate text
//	@Description  Generates a completion for the prompt. With stream=true the
//	@Description  response is NDJSON: token lines followed by a final done line.
//	@Tags         generate
//	@Accept       json
//	@Produce      json
//	@Param        request body types.GenerateRequest true "generation request"
//	@Success      200 {object} types.GenerateResponse
//	@Failure      400 {object} types.ErrorResponse
//	@Failure      404 {object} types.ErrorResponse
//	@Failure      429 {object} types.ErrorResponse
//	@Failure      503 {object} types.ErrorResponse
//	@Router       /generate [post]
func handleGenerate(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GenerateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}

		if req.Stream {
			w.Header().Set("Content-Type", "application/x-ndjson")
		} else {
			w.Header().Set("Content-Type", "application/json")
		}
		var flush func()
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}

		start := time.Now()
		lvl := requestLogLevel(r)
		writer := io.Writer(w)
		if lvl >= LevelDebug {
			// Tee NDJSON lines into the log for live debugging.
			writer = io.MultiWriter(w, &loggingLineWriter{})
		}
		if lvl >= LevelInfo {
			logRequestStart(r, "generate start", req.Model)
		}

		// Join the server base context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if generateTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(generateTimeout)*time.Second)
			defer tcancel()
		}

		if err := svc.Generate(ctx, req, writer, flush); err != nil {
			// Client disconnects and shutdown teardown need no reply.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := writeError(w, err)
			if lvl >= LevelInfo {
				logRequestEnd(r, "generate end", status, time.Since(start), err)
			}
			return
		}
		if lvl >= LevelInfo {
			logRequestEnd(r, "generate end", http.StatusOK, time.Since(start), nil)
		}
	}
}

// handleCancel stops an in-flight generation.
//
//	@Summary      Cancel a generation
//	@Description  Asks the target model's engine to stop its in-flight
//	@Description  generation. Cancellation is cooperative and best-effort.
//	@Tags         generate
//	@Accept       json
//	@Produce      json
//	@Param        request body types.CancelRequest true "cancel request"
//	@Success      200 {object} types.CancelResponse
//	@Failure      400 {object} types.ErrorResponse
//	@Router       /cancel [post]
func handleCancel(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CancelRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		writeJSON(w, types.CancelResponse{Canceled: svc.Cancel(req)})
	}
}

// handleParams updates engine sampling parameters.
//
//	@Summary      Update parameters
//	@Description  Applies the provided sampling parameters to the target
//	@Description  model's engine and returns the resulting set.
//	@Tags         params
//	@Accept       json
//	@Produce      json
//	@Param        request body types.ParamsRequest true "parameter update"
//	@Success      200 {object} types.ParamsView
//	@Failure      400 {object} types.ErrorResponse
//	@Failure      404 {object} types.ErrorResponse
//	@Router       /params [post]
func handleParams(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ParamsRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		view, err := svc.SetParams(ctx, req)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, view)
	}
}

// handleReset returns an engine to its idle state.
//
//	@Summary      Reset an engine
//	@Description  Abandons any in-flight generation and returns the engine to
//	@Description  ready.
//	@Tags         params
//	@Accept       json
//	@Produce      json
//	@Param        request body types.ResetRequest true "reset request"
//	@Success      200 {object} types.ResetResponse
//	@Failure      404 {object} types.ErrorResponse
//	@Failure      409 {object} types.ErrorResponse
//	@Router       /reset [post]
func handleReset(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ResetRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := svc.Reset(req); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, types.ResetResponse{Reset: true})
	}
}

// handleHealthz reports process liveness.
//
//	@Summary      Liveness probe
//	@Tags         health
//	@Produce      plain
//	@Success      200 {string} string "ok"
//	@Router       /healthz [get]
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleReadyz reports whether any engine can serve.
//
//	@Summary      Readiness probe
//	@Tags         health
//	@Produce      plain
//	@Success      200 {string} string "ready"
//	@Failure      503 {string} string "loading"
//	@Router       /readyz [get]
func handleReadyz(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	}
}

// decodeJSON enforces the JSON content type and body cap, then decodes
// into dst. It writes the error response itself and reports whether the
// handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		// Oversized bodies surface here too; report 400 without size details.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeJSON writes v with the JSON content type.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
