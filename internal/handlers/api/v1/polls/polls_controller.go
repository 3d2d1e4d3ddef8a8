package polls

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

// PollController handles fan poll endpoints
type PollController struct {
	polls   services.PollService
	builder *response.Builder
	logger  *zap.Logger
}

// NewPollController creates a new poll controller
func NewPollController(polls services.PollService, builder *response.Builder, logger *zap.Logger) *PollController {
	return &PollController{
		polls:   polls,
		builder: builder,
		logger:  logger,
	}
}

// List handles GET /api/v1/polls; ?open=true filters to polls still open
func (c *PollController) List(w http.ResponseWriter, r *http.Request) {
	openOnly := r.URL.Query().Get("open") == "true"

	result, err := c.polls.ListPolls(r.Context(), openOnly, getPaginationParams(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, result.Data, result.Pagination)
}

// Create handles POST /api/v1/polls (admin)
func (c *PollController) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreatePollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	poll, err := c.polls.CreatePoll(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, poll)
}

// Results handles GET /api/v1/polls/{id}
func (c *PollController) Results(w http.ResponseWriter, r *http.Request) {
	pollID := getPollIDFromPath(r)
	if pollID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid poll ID", nil))
		return
	}

	var userPtr *int64
	if userID := contextutils.GetUserID(r.Context()); userID != 0 {
		userPtr = &userID
	}

	results, err := c.polls.GetResults(r.Context(), pollID, userPtr)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, results)
}

// Vote handles POST /api/v1/polls/{id}/vote
func (c *PollController) Vote(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	pollID := getPollIDFromPath(r)
	if pollID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid poll ID", nil))
		return
	}

	var req struct {
		OptionID int64 `json:"option_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	results, err := c.polls.Vote(r.Context(), pollID, req.OptionID, userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, results)
}

// Helper methods

func getPollIDFromPath(r *http.Request) int64 {
	// /api/v1/polls/{id}[/action]
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
