// Package server exposes the pipeline over HTTP: the interactive
// invocation endpoint, the batch event entrypoint, and operational
// endpoints.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jeni-ai/jeni/pkg/model"
	"github.com/jeni-ai/jeni/pkg/usecase/chat"
	"github.com/jeni-ai/jeni/pkg/usecase/identity"
	"github.com/jeni-ai/jeni/pkg/usecase/pipeline"
	"github.com/jeni-ai/jeni/pkg/utils/logging"
)

// Server wires the HTTP surface to the pipeline and session manager
type Server struct {
	driver   *pipeline.Driver
	sessions *chat.Manager
	metrics  *Metrics
}

// New creates the HTTP server
func New(driver *pipeline.Driver, sessions *chat.Manager, metrics *Metrics) *Server {
	return &Server{
		driver:   driver,
		sessions: sessions,
		metrics:  metrics,
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		s.metrics.Handler().ServeHTTP(w, req)
	})

	r.Post("/events", s.handleEvents)
	r.Post("/invocations", s.handleInvocation)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// handleEvents is the batch entrypoint. Per-record failures are absorbed
// by the driver; the response is always 200 with the count summary.
func (s *Server) handleEvents(w http.ResponseWriter, req *http.Request) {
	var batch model.EventBatch
	if err := json.NewDecoder(req.Body).Decode(&batch); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid batch payload"})
		return
	}

	summary := s.driver.RunBatch(req.Context(), batch.Records)
	respondJSON(w, http.StatusOK, summary)
}

// requestContext adapts an HTTP request to the identity resolver's view of
// the runtime context. Plain HTTP has no runtime-assigned session id, so
// resolution falls through to the headers.
type requestContext struct {
	header http.Header
}

func (r requestContext) SessionID() string {
	return ""
}

func (r requestContext) Headers() map[string]string {
	headers := make(map[string]string, len(r.header))
	for name := range r.header {
		headers[name] = r.header.Get(name)
	}
	return headers
}

// handleInvocation runs one interactive turn. Reply chunks are streamed to
// the client in production order.
func (s *Server) handleInvocation(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var payload identity.Payload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		// A missing or malformed payload degrades to fallback identity,
		// it never fails the invocation.
		payload = nil
	}

	resolved := identity.Resolve(payload, requestContext{header: req.Header})
	logging.From(ctx).Info("resolved invocation identity",
		"session_id", resolved.SessionID, "actor_id", resolved.ActorID)

	session, err := s.sessions.Acquire(ctx, resolved)
	if err != nil {
		logging.From(ctx).Error("failed to acquire session", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to start session"})
		return
	}

	prompt := ""
	if v, ok := payload["prompt"].(string); ok {
		prompt = v
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	flusher, _ := w.(http.Flusher)

	err = session.Send(ctx, prompt, func(chunk string) error {
		if _, err := w.Write([]byte(chunk)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		// Headers are already sent; all we can do is log and close.
		logging.From(ctx).Error("invocation stream failed",
			"session_id", resolved.SessionID, "error", err)
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Default().Error("failed to encode response", "error", err)
	}
}
