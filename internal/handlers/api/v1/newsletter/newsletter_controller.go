package newsletter

import (
	"encoding/json"
	"net/http"

	"fanpulse/internal/response"
	"fanpulse/internal/services"
	"fanpulse/internal/validation"

	"go.uber.org/zap"
)

// NewsletterController handles newsletter subscription endpoints
type NewsletterController struct {
	newsletter services.NewsletterService
	builder    *response.Builder
	logger     *zap.Logger
}

// NewNewsletterController creates a new newsletter controller
func NewNewsletterController(newsletter services.NewsletterService, builder *response.Builder, logger *zap.Logger) *NewsletterController {
	return &NewsletterController{
		newsletter: newsletter,
		builder:    builder,
		logger:     logger,
	}
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Subscribe handles POST /api/v1/newsletter/subscribe
func (c *NewsletterController) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid email address", err))
		return
	}

	sub, err := c.newsletter.Subscribe(r.Context(), req.Email)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, sub)
}

// Confirm handles GET /api/v1/newsletter/confirm?token=...
func (c *NewsletterController) Confirm(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		c.builder.WriteError(w, r, services.NewValidationError("missing confirmation token", nil))
		return
	}

	if err := c.newsletter.Confirm(r.Context(), token); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, map[string]string{"status": "confirmed"})
}

// Unsubscribe handles POST /api/v1/newsletter/unsubscribe
func (c *NewsletterController) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid email address", err))
		return
	}

	if err := c.newsletter.Unsubscribe(r.Context(), req.Email); err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteNoContent(w, r)
}
