// Package api serves the evidence pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/evidence-cli/internal/model"
	"github.com/sells-group/evidence-cli/internal/pipeline"
)

// Evidence is the pipeline surface the API needs.
type Evidence interface {
	Run(ctx context.Context, req pipeline.Request) *model.EvidenceBundle
	Get(ctx context.Context, contentID string) (*model.EvidenceBundle, error)
}

// Config tunes the router.
type Config struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// maxBodyBytes caps request bodies on POST /v1/evidence.
const maxBodyBytes = 1 << 20

type handler struct {
	svc Evidence
}

// NewRouter builds the chi router.
func NewRouter(svc Evidence, cfg Config) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 3 * time.Minute
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	h := &handler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Route("/v1/evidence", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		r.Post("/", h.create)
		r.Get("/{contentID}", h.get)
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	bundle := h.svc.Run(r.Context(), req)
	writeJSON(w, http.StatusOK, bundle)
}

func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")

	bundle, err := h.svc.Get(r.Context(), contentID)
	if err != nil {
		zap.L().Error("api: get evidence failed",
			zap.String("content_id", contentID),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to load evidence")
		return
	}
	if bundle == nil {
		writeError(w, http.StatusNotFound, "evidence not found")
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
