package engagement

import (
	"encoding/json"
	"net/http"

	"fanpulse/internal/contextutils"
	"fanpulse/internal/response"
	"fanpulse/internal/services"
	"fanpulse/internal/validation"

	"go.uber.org/zap"
)

// EngagementController serves stat counters, badges and the visit tracker
type EngagementController struct {
	engagement services.EngagementService
	builder    *response.Builder
	logger     *zap.Logger
}

// NewEngagementController creates a new engagement controller
func NewEngagementController(engagement services.EngagementService, builder *response.Builder, logger *zap.Logger) *EngagementController {
	return &EngagementController{
		engagement: engagement,
		builder:    builder,
		logger:     logger,
	}
}

// GetStats handles GET /api/v1/engagement/stats
func (c *EngagementController) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	stats, err := c.engagement.GetStats(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, stats)
}

// GetBadges handles GET /api/v1/engagement/badges
func (c *EngagementController) GetBadges(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	badges, err := c.engagement.GetBadges(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, badges)
}

// GetProgress handles GET /api/v1/engagement/badges/progress, returning
// every catalog badge with its completion percentage.
func (c *EngagementController) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	progress, err := c.engagement.GetBadgeProgress(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, progress)
}

// NewBadge handles GET /api/v1/engagement/badges/new. The most recently
// unlocked badge is held for a short window for the UI toast, then clears
// itself; the response is null outside that window.
func (c *EngagementController) NewBadge(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}
	c.builder.WriteSuccess(w, r, c.engagement.NewBadge(userID))
}

// TrackAction handles POST /api/v1/engagement/actions for site features that
// only need a counter bump (player comparison, dream team, quizzes).
func (c *EngagementController) TrackAction(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	var req services.TrackActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError(err.Error(), err))
		return
	}

	statKey, ok := services.StatKeyForAction(req.Action)
	if !ok {
		c.builder.WriteError(w, r, services.NewValidationError("unknown action", nil))
		return
	}

	result, err := c.engagement.IncrementStat(r.Context(), userID, statKey, 1)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, result)
}

// TrackVisit handles POST /api/v1/engagement/visit. The first call of each
// day advances the visit streak; repeat calls are no-ops.
func (c *EngagementController) TrackVisit(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	result, err := c.engagement.TrackVisit(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, result)
}
