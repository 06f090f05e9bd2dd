package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/printatelier/storefront/internal/database"
	"github.com/printatelier/storefront/internal/fulfillment"
	"github.com/printatelier/storefront/internal/middleware"
	"github.com/printatelier/storefront/internal/models"
	"github.com/printatelier/storefront/internal/orders"
	"github.com/printatelier/storefront/internal/ratelimit"
	"github.com/printatelier/storefront/internal/store"
)

// Handler handles HTTP requests for the API
type Handler struct {
	store         store.Store
	db            *database.DB
	resolver      *orders.Resolver
	submitter     *fulfillment.Submitter
	publish       func(models.Product)
	limiter       *ratelimit.Manager
	webhookSecret string
	adminSecret   string
	assetsDir     string
	version       string
	buildTime     string
	gitCommit     string
	startTime     time.Time
}

// NewHandler creates a new API handler
func NewHandler(store store.Store, db *database.DB, resolver *orders.Resolver, submitter *fulfillment.Submitter, publish func(models.Product), limiter *ratelimit.Manager, webhookSecret, adminSecret, assetsDir, version, buildTime, gitCommit string) *Handler {
	return &Handler{
		store:         store,
		db:            db,
		resolver:      resolver,
		submitter:     submitter,
		publish:       publish,
		limiter:       limiter,
		webhookSecret: webhookSecret,
		adminSecret:   adminSecret,
		assetsDir:     assetsDir,
		version:       version,
		buildTime:     buildTime,
		gitCommit:     gitCommit,
		startTime:     time.Now(),
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {
		// Health check endpoints
		r.Get("/health", h.healthHandler)
		r.Get("/health/ready", h.readinessHandler)
		r.Get("/health/live", h.livenessHandler)

		// Payment provider callback
		r.With(middleware.WebhookRateLimit(h.limiter)).
			Post("/payments/webhook", h.paymentWebhookHandler)

		// Product intake (protected by shared secret middleware)
		r.With(middleware.AdminSecret(h.adminSecret)).
			Post("/products", h.createProductHandler)
		r.Get("/products", h.listProductsHandler)
		r.Get("/products/{id}", h.getProductHandler)

		// System info
		r.Get("/version", h.versionHandler)
	})

	// Stored blobs (upscaled renditions) served publicly
	if h.assetsDir != "" {
		fs := http.FileServer(http.Dir(h.assetsDir))
		r.Handle("/assets/*", http.StripPrefix("/assets/", fs))
	}

	// Root health check
	r.Get("/health", h.healthHandler)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler checks if the application is ready to serve traffic
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"store": "ok",
	}

	statusCode := http.StatusOK

	// Check store health
	if err := h.store.Health(ctx); err != nil {
		checks["store"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: r.Header.Get("X-Request-ID"),
	}

	h.writeJSONResponse(w, statusCode, response)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
