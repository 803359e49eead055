package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rabbithole-ai/warren/pkg/api"
	"github.com/rabbithole-ai/warren/pkg/transport"
)

// Adapter serves the warren gateway API over HTTP. It routes requests
// to the service facade and serializes results and structured errors.
type Adapter struct {
	service transport.Service
	mux     *http.ServeMux
	config  Config
	handler http.Handler
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	Addr        string
	MaxBodySize int64

	// MetricsPath exposes the Prometheus registry when non-empty.
	MetricsPath string
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		MaxBodySize: 10 << 20, // 10 MB
		MetricsPath: "/metrics",
	}
}

// NewAdapter creates an HTTP adapter for the given service.
// Middleware is applied to the full route set in the given order.
func NewAdapter(service transport.Service, cfg Config, middlewares ...transport.Middleware) *Adapter {
	a := &Adapter{
		service: service,
		mux:     http.NewServeMux(),
		config:  cfg,
	}

	a.mux.HandleFunc("POST /providers", a.handleCreateProvider)
	a.mux.HandleFunc("GET /providers", a.handleListProviders)
	a.mux.HandleFunc("GET /providers/{id}", a.handleGetProvider)
	a.mux.HandleFunc("PATCH /providers/{id}", a.handleUpdateProvider)
	a.mux.HandleFunc("DELETE /providers/{id}", a.handleDeleteProvider)
	a.mux.HandleFunc("GET /providers/{id}/listed", a.handleListed)

	a.mux.HandleFunc("POST /chat/completions", a.handleComplete)
	a.mux.HandleFunc("POST /tokens", a.handleCountTokens)
	a.mux.HandleFunc("GET /models", a.handleAllModels)
	a.mux.HandleFunc("GET /models/{id}", a.handleModelsByProvider)

	a.mux.HandleFunc("GET /healthz", a.handleHealth)
	if cfg.MetricsPath != "" {
		a.mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	a.handler = http.Handler(a.mux)
	if len(middlewares) > 0 {
		a.handler = transport.Chain(middlewares...)(a.mux)
	}

	return a
}

// Handler returns the http.Handler for this adapter. Use this to
// integrate with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.handler
}

// decodeJSON enforces the Content-Type and body size limits, then
// decodes the body into v. It writes the error response itself and
// reports success via the return value.
func (a *Adapter) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge,
			)
			return false
		}
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// pathID parses the {id} path segment. Non-numeric ids are rejected
// before the service sees them.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("id", "id must be an integer"))
		return 0, false
	}
	return id, true
}

func (a *Adapter) handleCreateProvider(w http.ResponseWriter, r *http.Request) {
	var p api.Provider
	if !a.decodeJSON(w, r, &p) {
		return
	}

	resp, err := a.service.CreateProvider(r.Context(), &p)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, resp)
}

func (a *Adapter) handleListProviders(w http.ResponseWriter, r *http.Request) {
	providers, err := a.service.ListProviders(r.Context())
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, providers)
}

func (a *Adapter) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := a.service.GetProvider(r.Context(), id)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (a *Adapter) handleUpdateProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch api.ProviderPatch
	if !a.decodeJSON(w, r, &patch) {
		return
	}

	p, err := a.service.UpdateProvider(r.Context(), id, patch)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}

func (a *Adapter) handleDeleteProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	resp, err := a.service.DeleteProvider(r.Context(), id)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

func (a *Adapter) handleListed(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	resp, err := a.service.Listed(r.Context(), id)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

func (a *Adapter) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req api.CompletionRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	payload, err := a.service.Complete(r.Context(), &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}

	// The backend payload is passed through unchanged.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func (a *Adapter) handleCountTokens(w http.ResponseWriter, r *http.Request) {
	var req api.TokenCountRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	resp, err := a.service.CountTokens(r.Context(), &req)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

func (a *Adapter) handleAllModels(w http.ResponseWriter, r *http.Request) {
	groups, err := a.service.AllModels(r.Context())
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, groups)
}

func (a *Adapter) handleModelsByProvider(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	resp, err := a.service.ModelsByProvider(r.Context(), id)
	if err != nil {
		transport.WriteError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.service.HealthCheck(r.Context()); err != nil {
		transport.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
