package predictions

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"fanpulse/internal/contextutils"
	"fanpulse/internal/models"
	"fanpulse/internal/response"
	"fanpulse/internal/services"

	"go.uber.org/zap"
)

// PredictionController handles score-guess endpoints
type PredictionController struct {
	predictions services.PredictionService
	builder     *response.Builder
	logger      *zap.Logger
}

// NewPredictionController creates a new prediction controller
func NewPredictionController(predictions services.PredictionService, builder *response.Builder, logger *zap.Logger) *PredictionController {
	return &PredictionController{
		predictions: predictions,
		builder:     builder,
		logger:      logger,
	}
}

// Submit handles POST /api/v1/predictions
func (c *PredictionController) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		c.builder.WriteError(w, r, services.NewBusinessError("method not allowed", "METHOD_NOT_ALLOWED"))
		return
	}

	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	var req services.SubmitPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = userID

	prediction, err := c.predictions.SubmitPrediction(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, prediction)
}

// ListMine handles GET /api/v1/predictions
func (c *PredictionController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	result, err := c.predictions.GetUserPredictions(r.Context(), userID, getPaginationParams(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, result.Data, result.Pagination)
}

// GetForMatch handles GET /api/v1/predictions/match/{matchID}, returning the
// caller's prediction for that match or null when none exists.
func (c *PredictionController) GetForMatch(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	matchID := getMatchIDFromPath(r)
	if matchID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid match ID", nil))
		return
	}

	prediction, err := c.predictions.GetMatchPrediction(r.Context(), userID, matchID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, prediction)
}

// Helper methods

func getMatchIDFromPath(r *http.Request) int64 {
	// /api/v1/predictions/match/{matchID}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) >= 5 && parts[3] == "match" {
		if id, err := strconv.ParseInt(parts[4], 10, 64); err == nil {
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
