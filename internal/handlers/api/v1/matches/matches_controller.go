package matches

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"fanpulse/internal/models"
	"fanpulse/internal/response"
	"fanpulse/internal/services"

	"go.uber.org/zap"
)

// MatchController handles the fixture calendar endpoints
type MatchController struct {
	matches services.MatchService
	builder *response.Builder
	logger  *zap.Logger
}

// NewMatchController creates a new match controller
func NewMatchController(matches services.MatchService, builder *response.Builder, logger *zap.Logger) *MatchController {
	return &MatchController{
		matches: matches,
		builder: builder,
		logger:  logger,
	}
}

// List handles GET /api/v1/matches with an optional status filter
func (c *MatchController) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		c.builder.WriteError(w, r, services.NewBusinessError("method not allowed", "METHOD_NOT_ALLOWED"))
		return
	}

	result, err := c.matches.ListMatches(r.Context(), r.URL.Query().Get("status"), getPaginationParams(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, result.Data, result.Pagination)
}

// Get handles GET /api/v1/matches/{id}
func (c *MatchController) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		c.builder.WriteError(w, r, services.NewBusinessError("method not allowed", "METHOD_NOT_ALLOWED"))
		return
	}

	matchID := getMatchIDFromPath(r)
	if matchID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid match ID", nil))
		return
	}

	match, err := c.matches.GetMatch(r.Context(), matchID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, match)
}

// Create handles POST /api/v1/matches (admin)
func (c *MatchController) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	match, err := c.matches.CreateMatch(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, match)
}

// UpdateStatus handles POST /api/v1/matches/{id}/status (admin)
func (c *MatchController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	matchID := getMatchIDFromPath(r)
	if matchID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid match ID", nil))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	match, err := c.matches.UpdateMatchStatus(r.Context(), matchID, req.Status)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, match)
}

// Finalize handles POST /api/v1/matches/{id}/finalize (admin). Recording the
// final score scores every open prediction and refreshes the leaderboard.
func (c *MatchController) Finalize(w http.ResponseWriter, r *http.Request) {
	matchID := getMatchIDFromPath(r)
	if matchID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid match ID", nil))
		return
	}

	var req services.FinalizeMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.MatchID = matchID

	match, err := c.matches.FinalizeMatch(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, match)
}

// Helper methods

func getMatchIDFromPath(r *http.Request) int64 {
	// /api/v1/matches/{id}[/action]
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) >= 4 {
		if id, err := strconv.ParseInt(parts[3], 10, 64); err == nil {
			return id
		}
	}
	return 0
}

func getPaginationParams(r *http.Request) models.PaginationParams {
	params := models.DefaultPaginationParams()

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			params.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}
	return params
}
