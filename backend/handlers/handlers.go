package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/TH33ORACL3/prompt-keeper/backend/aigateway"
	"github.com/TH33ORACL3/prompt-keeper/backend/kv"
	"github.com/TH33ORACL3/prompt-keeper/backend/service"
	"github.com/TH33ORACL3/prompt-keeper/backend/settings"
	"github.com/TH33ORACL3/prompt-keeper/backend/store"
)

const maxBodyBytes = 1 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	Keeper   *service.Keeper
	Settings *settings.Store
	Backend  kv.Store
	Logger   *slog.Logger
	Metrics  *Metrics
}

// New creates a new Handler with initialized metrics
func New(k *service.Keeper, s *settings.Store, backend kv.Store, logger *slog.Logger) *Handler {
	return &Handler{
		Keeper:   k,
		Settings: s,
		Backend:  backend,
		Logger:   logger,
		Metrics:  NewMetrics(),
	}
}

// Routes sets up all HTTP routes with middleware
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// Prompts
	mux.HandleFunc("POST /api/prompts", h.handleCreatePrompt)
	mux.HandleFunc("GET /api/prompts", h.handleListPrompts)
	mux.HandleFunc("GET /api/prompts/{id}", h.handleGetPrompt)
	mux.HandleFunc("PATCH /api/prompts/{id}", h.handleUpdatePrompt)
	mux.HandleFunc("DELETE /api/prompts/{id}", h.handleDeletePrompt)
	mux.HandleFunc("POST /api/prompts/{id}/use", h.handleUsePrompt)
	mux.HandleFunc("POST /api/prompts/{id}/favorite", h.handleToggleFavorite)
	mux.HandleFunc("GET /api/prompts/{id}/versions", h.handleListVersions)
	mux.HandleFunc("POST /api/prompts/{id}/versions", h.handleCreateVersion)
	mux.HandleFunc("POST /api/prompts/{id}/versions/{versionId}/activate", h.handleActivateVersion)
	mux.HandleFunc("DELETE /api/prompts/{id}/versions/{versionId}", h.handleDeleteVersion)
	mux.HandleFunc("GET /api/favorites", h.handleListFavorites)
	mux.HandleFunc("GET /api/recent", h.handleListRecent)
	mux.HandleFunc("GET /api/search", h.handleSearch)
	mux.HandleFunc("GET /api/categories", h.handleListCategories)
	mux.HandleFunc("GET /api/stats", h.handleStats)
	mux.HandleFunc("DELETE /api/data", h.handleClearData)

	// Collections
	mux.HandleFunc("GET /api/collections", h.handleListCollections)
	mux.HandleFunc("POST /api/collections", h.handleCreateCollection)
	mux.HandleFunc("PATCH /api/collections/{id}", h.handleUpdateCollection)
	mux.HandleFunc("DELETE /api/collections/{id}", h.handleDeleteCollection)
	mux.HandleFunc("GET /api/collections/{id}/prompts", h.handleListCollectionPrompts)

	// Gamification
	mux.HandleFunc("GET /api/gamification", h.handleGetProfile)
	mux.HandleFunc("POST /api/gamification/login", h.handleLogin)
	mux.HandleFunc("GET /api/achievements", h.handleListAchievements)
	mux.HandleFunc("POST /api/gamification/recent/clear", h.handleClearRecentAchievements)
	mux.HandleFunc("DELETE /api/gamification", h.handleResetGamification)

	// Settings and AI
	mux.HandleFunc("GET /api/settings/ai", h.handleGetSettings)
	mux.HandleFunc("PATCH /api/settings/ai", h.handleUpdateSettings)
	mux.HandleFunc("POST /api/settings/ai/reset", h.handleResetSettings)
	mux.HandleFunc("PUT /api/settings/ai/keys/{provider}", h.handleUpdateAPIKey)
	mux.HandleFunc("POST /api/ai/title", h.handleGenerateTitle)
	mux.HandleFunc("POST /api/ai/tags", h.handleGenerateTags)
	mux.HandleFunc("POST /api/ai/improve", h.handleImprovePrompt)
	mux.HandleFunc("POST /api/ai/test", h.handleTestConnection)

	// System routes
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /metrics", h.handleMetrics)

	// Apply middleware
	var handler http.Handler = mux
	handler = h.corsMiddleware(handler)
	handler = h.loggingMiddleware(handler)
	handler = h.recoverMiddleware(handler)

	return handler
}

// Middleware: Panic recovery
func (h *Handler) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.Logger.Error("panic recovered",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
				)
				h.Metrics.IncrementHTTPErrors()
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request logging
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.Metrics.IncrementHTTPRequests()

		// Wrap ResponseWriter to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		h.Logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", duration.Milliseconds(),
		)
	})
}

// Middleware: CORS
func (h *Handler) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Handler: Health check
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "healthy",
		"storage": "connected",
	}

	// Verify storage connectivity
	if _, _, err := h.Backend.Load(r.Context(), kv.DocSettings); err != nil {
		h.Logger.Error("health check failed", "error", err)
		response["storage"] = "error"
		h.respondJSON(w, http.StatusInternalServerError, response)
		return
	}

	h.respondJSON(w, http.StatusOK, response)
}

// Handler: Metrics
func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.Metrics.ExportPrometheus()))
}

// Helper: Decode a JSON request body
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.Logger.Warn("failed to decode request", "error", err, "path", r.URL.Path)
		h.respondError(w, http.StatusBadRequest, "Invalid JSON")
		return false
	}
	return true
}

// Helper: Respond with JSON
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode response", "error", err)
		h.Metrics.IncrementHTTPErrors()
	}
}

// Helper: Respond with error
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.Metrics.IncrementHTTPErrors()
	h.respondJSON(w, status, ErrorResponse{Error: message})
}

// Helper: Map domain errors onto HTTP statuses
func (h *Handler) respondDomainError(w http.ResponseWriter, err error, fallback string, attrs ...any) {
	var apiErr *aigateway.Error
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, settings.ErrUnknownProvider):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrPromptNotFound),
		errors.Is(err, store.ErrVersionNotFound),
		errors.Is(err, store.ErrCollectionNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrLastVersion):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, aigateway.ErrDisabled):
		h.respondError(w, http.StatusPreconditionFailed, "AI integration is not enabled or no API key is set")
	case errors.Is(err, aigateway.ErrNoTags):
		h.respondError(w, http.StatusBadGateway, "No valid tags were generated")
	case errors.As(err, &apiErr):
		h.respondError(w, http.StatusBadGateway, apiErr.Message)
	default:
		h.Logger.Error("request failed", append([]any{"error", err, "response", fallback}, attrs...)...)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}

// ErrorResponse wraps error messages
type ErrorResponse struct {
	Error string `json:"error"`
}
