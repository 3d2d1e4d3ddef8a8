package services

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"fanpulse/internal/events"
	"fanpulse/internal/models"
	"fanpulse/internal/repositories"
	"fanpulse/internal/utils"
	"fanpulse/internal/validation"

	"go.uber.org/zap"
)

// articleService implements ArticleService
type articleService struct {
	articleRepo repositories.ArticleRepository
	engagement  EngagementService
	uploader    *utils.CloudinaryService
	events      events.EventBus
	logger      *zap.Logger
}

// NewArticleService creates a new article service. uploader may be nil when
// Cloudinary is not configured; cover upload then returns a business error.
func NewArticleService(
	articleRepo repositories.ArticleRepository,
	engagement EngagementService,
	uploader *utils.CloudinaryService,
	bus events.EventBus,
	logger *zap.Logger,
) ArticleService {
	return &articleService{
		articleRepo: articleRepo,
		engagement:  engagement,
		uploader:    uploader,
		events:      bus,
		logger:      logger,
	}
}

// CreateArticle publishes a news article
func (s *articleService) CreateArticle(ctx context.Context, req *CreateArticleRequest) (*models.Article, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid article", err)
	}

	article := &models.Article{
		AuthorID:  req.AuthorID,
		Title:     strings.TrimSpace(req.Title),
		Summary:   strings.TrimSpace(req.Summary),
		Body:      req.Body,
		Category:  req.Category,
		Status:    models.ArticleStatusPublished,
		PublishedAt: time.Now(),
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		s.logger.Error("failed to create article", zap.Error(err))
		return nil, NewInternalError("failed to create article")
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, events.NewArticlePublishedEvent(req.AuthorID, article.ID, article.Title))
	}
	return article, nil
}

// GetArticle returns one article with engagement counts
func (s *articleService) GetArticle(ctx context.Context, id int64, userID *int64) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, NewInternalError("failed to load article")
	}
	if article == nil {
		return nil, NewNotFoundError("article not found")
	}
	return article, nil
}

// ListArticles returns published articles, newest first
func (s *articleService) ListArticles(ctx context.Context, category string, params models.PaginationParams, userID *int64) (*models.PaginatedResponse[*models.Article], error) {
	page, err := s.articleRepo.List(ctx, category, params, userID)
	if err != nil {
		return nil, NewInternalError("failed to list articles")
	}
	return page, nil
}

// ToggleReaction flips the user's reaction on an article. Only the first
// reaction to an article counts toward the reactions stat; withdrawing one
// does not decrement it (counters are monotonic).
func (s *articleService) ToggleReaction(ctx context.Context, articleID, userID int64) (bool, error) {
	article, err := s.articleRepo.GetByID(ctx, articleID, nil)
	if err != nil {
		return false, NewInternalError("failed to load article")
	}
	if article == nil {
		return false, NewNotFoundError("article not found")
	}

	reacted, err := s.articleRepo.ToggleReaction(ctx, articleID, userID)
	if err != nil {
		return false, NewInternalError("failed to store reaction")
	}

	if reacted {
		if _, err := s.engagement.IncrementStat(ctx, userID, models.StatReactions, 1); err != nil {
			s.logger.Warn("failed to bump reaction stat", zap.Error(err))
		}
	}
	return reacted, nil
}

// AddComment appends a comment and bumps the commenter's counter
func (s *articleService) AddComment(ctx context.Context, req *AddCommentRequest) (*models.Comment, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError("invalid comment", err)
	}

	article, err := s.articleRepo.GetByID(ctx, req.ArticleID, nil)
	if err != nil {
		return nil, NewInternalError("failed to load article")
	}
	if article == nil {
		return nil, NewNotFoundError("article not found")
	}

	comment := &models.Comment{
		ArticleID: req.ArticleID,
		UserID:    req.UserID,
		Content:   strings.TrimSpace(req.Content),
	}
	if err := s.articleRepo.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			zap.Int64("article_id", req.ArticleID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to create comment")
	}

	if _, err := s.engagement.IncrementStat(ctx, req.UserID, models.StatComments, 1); err != nil {
		s.logger.Warn("failed to bump comment stat", zap.Error(err))
	}
	return comment, nil
}

// ListComments returns an article's comments, oldest first
func (s *articleService) ListComments(ctx context.Context, articleID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error) {
	page, err := s.articleRepo.ListComments(ctx, articleID, params)
	if err != nil {
		return nil, NewInternalError("failed to list comments")
	}
	return page, nil
}

// UploadCoverImage stores the cover in Cloudinary and saves the returned URL
func (s *articleService) UploadCoverImage(ctx context.Context, articleID int64, file multipart.File, header *multipart.FileHeader) (string, error) {
	if s.uploader == nil {
		return "", NewServiceUnavailableError("image uploads are not configured")
	}

	article, err := s.articleRepo.GetByID(ctx, articleID, nil)
	if err != nil {
		return "", NewInternalError("failed to load article")
	}
	if article == nil {
		return "", NewNotFoundError("article not found")
	}

	url, err := s.uploader.UploadImage(ctx, file, header, "article-covers")
	if err != nil {
		s.logger.Error("cover upload failed", zap.Int64("article_id", articleID), zap.Error(err))
		return "", NewInternalError("failed to upload cover image")
	}

	if err := s.articleRepo.SetCoverImage(ctx, articleID, url); err != nil {
		return "", NewInternalError("failed to store cover image URL")
	}
	return url, nil
}

// ArchiveOlderThan marks published articles older than cutoff as archived.
// This is the periodic housekeeping job; see StartArchiver.
func (s *articleService) ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	archived, err := s.articleRepo.ArchiveOlderThan(ctx, cutoff)
	if err != nil {
		return 0, NewInternalError("failed to archive articles")
	}
	if archived > 0 {
		s.logger.Info("articles archived",
			zap.Int64("count", archived),
			zap.Time("cutoff", cutoff),
		)
	}
	return archived, nil
}

// StartArchiver runs the archive pass on a ticker until ctx is cancelled.
// It blocks; callers run it in a goroutine.
func StartArchiver(ctx context.Context, articles ArticleService, retention, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := articles.ArchiveOlderThan(ctx, time.Now().Add(-retention)); err != nil {
				logger.Warn("archive pass failed", zap.Error(err))
			}
		}
	}
}
