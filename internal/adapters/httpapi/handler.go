package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/qsautiere/mailer-api/internal/auth"
	"github.com/qsautiere/mailer-api/internal/core/domain"
	"github.com/qsautiere/mailer-api/internal/core/usecase"
)

const (
	timeFormat      = "2006-01-02T15:04:05.999999999Z07:00"
	maxJSONBodySize = 1 << 20
)

type Handler struct {
	authService *usecase.AuthService
	mailService *usecase.MailService
	verifier    *auth.AdminVerifier
	logger      *zap.Logger
}

func NewHandler(authService *usecase.AuthService, mailService *usecase.MailService, verifier *auth.AdminVerifier, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		authService: authService,
		mailService: mailService,
		verifier:    verifier,
		logger:      logger,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.apiInfo)
	r.Get("/healthz", h.healthz)

	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAPIKey)
		pr.Post("/send", h.sendMail)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.requireAdmin)
		pr.Post("/api-keys", h.createAPIKey)
		pr.Get("/api-keys", h.listAPIKeys)
		pr.Delete("/api-keys/{id}", h.revokeAPIKey)
	})

	return r
}

type sendMailRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Message string `json:"message"`
}

type createAPIKeyRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	IsActive    *bool      `json:"isActive,omitempty"`
	RateLimit   int        `json:"rateLimit,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type apiKeySummary struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Active      bool   `json:"active"`
	RateLimit   int    `json:"rateLimit"`
	ExpiresAt   string `json:"expiresAt,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func (h *Handler) sendMail(w http.ResponseWriter, r *http.Request) {
	var req sendMailRequest
	if !h.decodeValid(w, r, sendMailSchema, &req) {
		return
	}

	info, err := h.mailService.SendContactMail(r.Context(), domain.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Message: req.Message,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.logger.Debug("contact mail dispatched",
		zap.String("api_key_id", apiKeyIDFromContext(r.Context())),
		zap.String("message_id", info.MessageID))

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Email envoyé avec succès",
	})
}

func (h *Handler) createAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createAPIKeyRequest
	if !h.decodeValid(w, r, createAPIKeySchema, &req) {
		return
	}

	created, err := h.authService.CreateAPIKey(r.Context(), usecase.CreateAPIKeyRequest{
		Name:        req.Name,
		Description: req.Description,
		Active:      req.IsActive,
		RateLimit:   req.RateLimit,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		h.logger.Error("create api key", zap.Error(err))
		handleDomainError(w, err)
		return
	}

	h.logger.Info("api key issued",
		zap.String("id", created.ID),
		zap.String("admin", adminSubject(r.Context())))

	// The raw key is surfaced exactly once, here. Listings only ever
	// show the masked form.
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "API key created successfully",
		"key":     created.Key,
		"apiKey":  toAPIKeySummary(created),
	})
}

func (h *Handler) listAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.authService.ListAPIKeys(r.Context())
	if err != nil {
		h.logger.Error("list api keys", zap.Error(err))
		handleDomainError(w, err)
		return
	}

	result := make([]apiKeySummary, 0, len(keys))
	for _, key := range keys {
		result = append(result, toAPIKeySummary(key))
	}
	writeJSON(w, http.StatusOK, map[string]any{"apiKeys": result})
}

func (h *Handler) revokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.authService.RevokeAPIKey(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "API key not found")
			return
		}
		h.logger.Error("revoke api key", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "API key revoked successfully"})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) apiInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, apiInfoSpec())
}

// decodeValid reads the body, checks it against the JSON schema, and
// unmarshals it into dst. Schema violations never reach the services.
func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, schema schemaValidator, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := schema.Validate(payload); err != nil {
		writeError(w, http.StatusBadRequest, "Données invalides")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func toAPIKeySummary(key domain.APIKey) apiKeySummary {
	summary := apiKeySummary{
		ID:          key.ID,
		Key:         maskKey(key.Key),
		Name:        key.Name,
		Description: key.Description,
		Active:      key.Active,
		RateLimit:   key.RateLimit,
		CreatedAt:   key.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:   key.UpdatedAt.UTC().Format(timeFormat),
	}
	if key.ExpiresAt != nil {
		summary.ExpiresAt = key.ExpiresAt.UTC().Format(timeFormat)
	}
	return summary
}

// maskKey keeps the first characters so an admin can tell keys apart
// without the listing ever exposing a usable secret.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "********"
	}
	return key[:8] + "..."
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Clé API invalide ou expirée")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
