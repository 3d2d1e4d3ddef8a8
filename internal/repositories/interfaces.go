package repositories

import (
	"context"
	"time"

	"fanpulse/internal/models"
)

// ===============================
// REPOSITORY INTERFACES
// ===============================

// UserRepository defines the contract for account data
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastSeen(ctx context.Context, userID int64) error
}

// MatchRepository defines the contract for fixture data
type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int64) (*models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	List(ctx context.Context, status string, params models.PaginationParams) (*models.PaginatedResponse[*models.Match], error)
}

// PredictionRepository defines the contract for prediction rows
type PredictionRepository interface {
	Create(ctx context.Context, prediction *models.Prediction) error
	GetByUserAndMatch(ctx context.Context, userID, matchID int64) (*models.Prediction, error)
	GetByUser(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Prediction], error)
	GetUnscoredByMatch(ctx context.Context, matchID int64) ([]*models.Prediction, error)
	// GetAllScored returns every scored prediction joined with its username,
	// ordered chronologically within each user for streak computation.
	GetAllScored(ctx context.Context) ([]*models.Prediction, error)
	SetPoints(ctx context.Context, predictionID int64, points int) error
	IsDuplicate(err error) bool
}

// StatsRepository persists per-user counters and unlocked badges; it is the
// production implementation of the engagement service's storage port.
type StatsRepository interface {
	GetStats(ctx context.Context, userID int64) (*models.UserStats, error)
	SetStats(ctx context.Context, stats *models.UserStats) error
	GetBadges(ctx context.Context, userID int64) ([]models.UnlockedBadge, error)
	SetBadges(ctx context.Context, userID int64, badges []models.UnlockedBadge) error
	Clear(ctx context.Context, userID int64) error
}

// ArticleRepository defines the contract for news articles, reactions and comments
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id int64, userID *int64) (*models.Article, error)
	List(ctx context.Context, category string, params models.PaginationParams, userID *int64) (*models.PaginatedResponse[*models.Article], error)
	SetCoverImage(ctx context.Context, articleID int64, url string) error
	ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	ToggleReaction(ctx context.Context, articleID, userID int64) (reacted bool, err error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, articleID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error)
}

// PollRepository defines the contract for polls and votes
type PollRepository interface {
	Create(ctx context.Context, poll *models.Poll) error
	GetByID(ctx context.Context, id int64) (*models.Poll, error)
	List(ctx context.Context, openOnly bool, params models.PaginationParams) (*models.PaginatedResponse[*models.Poll], error)
	Vote(ctx context.Context, pollID, optionID, userID int64) error
	GetUserVote(ctx context.Context, pollID, userID int64) (*int64, error)
	IsDuplicate(err error) bool
}

// NewsletterRepository defines the contract for the subscription list
type NewsletterRepository interface {
	Create(ctx context.Context, sub *models.NewsletterSubscription) error
	ConfirmByToken(ctx context.Context, token string) (bool, error)
	DeleteByEmail(ctx context.Context, email string) error
	IsDuplicate(err error) bool
}
