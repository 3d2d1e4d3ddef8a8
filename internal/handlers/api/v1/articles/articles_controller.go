package articles

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

const maxCoverUploadBytes = 12 << 20

// ArticleController handles club news, reactions and comments
type ArticleController struct {
	articles services.ArticleService
	builder  *response.Builder
	logger   *zap.Logger
}

// NewArticleController creates a new article controller
func NewArticleController(articles services.ArticleService, builder *response.Builder, logger *zap.Logger) *ArticleController {
	return &ArticleController{
		articles: articles,
		builder:  builder,
		logger:   logger,
	}
}

// List handles GET /api/v1/articles with an optional category filter
func (c *ArticleController) List(w http.ResponseWriter, r *http.Request) {
	result, err := c.articles.ListArticles(r.Context(), r.URL.Query().Get("category"), getPaginationParams(r), viewerID(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, result.Data, result.Pagination)
}

// Get handles GET /api/v1/articles/{id}
func (c *ArticleController) Get(w http.ResponseWriter, r *http.Request) {
	articleID := getArticleIDFromPath(r)
	if articleID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid article ID", nil))
		return
	}

	article, err := c.articles.GetArticle(r.Context(), articleID, viewerID(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, article)
}

// Create handles POST /api/v1/articles (admin)
func (c *ArticleController) Create(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())

	var req services.CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.AuthorID = userID

	article, err := c.articles.CreateArticle(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, article)
}

// React handles POST /api/v1/articles/{id}/react, toggling the caller's
// reaction and reporting the resulting state.
func (c *ArticleController) React(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	articleID := getArticleIDFromPath(r)
	if articleID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid article ID", nil))
		return
	}

	reacted, err := c.articles.ToggleReaction(r.Context(), articleID, userID)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, map[string]bool{"reacted": reacted})
}

// ListComments handles GET /api/v1/articles/{id}/comments
func (c *ArticleController) ListComments(w http.ResponseWriter, r *http.Request) {
	articleID := getArticleIDFromPath(r)
	if articleID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid article ID", nil))
		return
	}

	result, err := c.articles.ListComments(r.Context(), articleID, getPaginationParams(r))
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WritePaginated(w, r, result.Data, result.Pagination)
}

// AddComment handles POST /api/v1/articles/{id}/comments
func (c *ArticleController) AddComment(w http.ResponseWriter, r *http.Request) {
	userID := contextutils.GetUserID(r.Context())
	if userID == 0 {
		c.builder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	articleID := getArticleIDFromPath(r)
	if articleID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid article ID", nil))
		return
	}

	var req services.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = userID
	req.ArticleID = articleID

	comment, err := c.articles.AddComment(r.Context(), &req)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteCreated(w, r, comment)
}

// UploadCover handles POST /api/v1/articles/{id}/cover (admin, multipart)
func (c *ArticleController) UploadCover(w http.ResponseWriter, r *http.Request) {
	articleID := getArticleIDFromPath(r)
	if articleID == 0 {
		c.builder.WriteError(w, r, services.NewValidationError("invalid article ID", nil))
		return
	}

	if err := r.ParseMultipartForm(maxCoverUploadBytes); err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("invalid multipart form", err))
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		c.builder.WriteError(w, r, services.NewValidationError("cover file is required", err))
		return
	}
	defer file.Close()

	url, err := c.articles.UploadCoverImage(r.Context(), articleID, file, header)
	if err != nil {
		c.builder.WriteError(w, r, err)
		return
	}
	c.builder.WriteSuccess(w, r, map[string]string{"cover_image_url": url})
}

// Helper methods

func viewerID(r *http.Request) *int64 {
	if id := contextutils.GetUserID(r.Context()); id != 0 {
		return &id
	}
	return nil
}

func getArticleIDFromPath(r *http.Request) int64 {
	// /api/v1/articles/{id}[/action]
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
