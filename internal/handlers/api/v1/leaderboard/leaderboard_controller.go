package leaderboard

import (
	"net/http"
	"strconv"

	"fanpulse/internal/contextutils"
	"fanpulse/internal/response"
	"fanpulse/internal/services"

	"go.uber.org/zap"
)

const defaultStandingsLimit = 50

// LeaderboardController serves the prediction standings
type LeaderboardController struct {
	leaderboard services.LeaderboardService
	builder     *response.Builder
	logger      *zap.Logger
}

// NewLeaderboardController creates a new leaderboard controller
func NewLeaderboardController(leaderboard services.LeaderboardService, builder *response.Builder, logger *zap.Logger) *LeaderboardController {
	return &LeaderboardController{
		leaderboard: leaderboard,
		builder:     builder,
		logger:      logger,
	}
}

// Standings handles GET /api/v1/leaderboard
func (c *LeaderboardController) Standings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		c.builder.WriteError(w, r, services.NewBusinessError("method not allowed", "METHOD_NOT_ALLOWED"))
		return
	}

	limit := defaultStandingsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	entries, err := c.leaderboard.GetLeaderboard(r.Context(), limit)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, entries)
}

// MyRank handles GET /api/v1/leaderboard/me; users with no scored
// predictions get a null entry.
func (c *LeaderboardController) MyRank(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	entry, err := c.leaderboard.GetUserRank(r.Context(), userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, entry)
}
