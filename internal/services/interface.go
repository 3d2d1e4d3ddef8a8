package services

import (
	"context"
	"mime/multipart"
	"time"

	"fanpulse/internal/models"
)

// ===============================
// SERVICE INTERFACES
// ===============================

// AuthService handles account registration and token authentication
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	LoginWithGoogle(ctx context.Context, email, name string) (*AuthResponse, error)
	VerifyToken(ctx context.Context, token string) (*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// EngagementService owns the per-user stat counters and the badge evaluator.
// Mutations evaluate badges against the just-written record before returning.
type EngagementService interface {
	IncrementStat(ctx context.Context, userID int64, key string, amount int) (*StatUpdateResult, error)
	TrackVisit(ctx context.Context, userID int64) (*StatUpdateResult, error)
	RecordPredictionOutcome(ctx context.Context, userID int64, points int) (*StatUpdateResult, error)
	GetStats(ctx context.Context, userID int64) (*models.UserStats, error)
	GetBadges(ctx context.Context, userID int64) ([]models.UnlockedBadge, error)
	GetBadgeProgress(ctx context.Context, userID int64) ([]models.BadgeProgress, error)
	NewBadge(userID int64) *models.UnlockedBadge
}

// PredictionService handles score guesses and their one-shot scoring
type PredictionService interface {
	SubmitPrediction(ctx context.Context, req *SubmitPredictionRequest) (*models.Prediction, error)
	GetUserPredictions(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Prediction], error)
	GetMatchPrediction(ctx context.Context, userID, matchID int64) (*models.Prediction, error)
	ScoreMatchPredictions(ctx context.Context, match *models.Match) (int, error)
}

// LeaderboardService ranks users by total prediction points
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
	GetUserRank(ctx context.Context, userID int64) (*models.LeaderboardEntry, error)
	Invalidate(ctx context.Context)
}

// MatchService manages the fixture calendar and match finalization
type MatchService interface {
	ListMatches(ctx context.Context, status string, params models.PaginationParams) (*models.PaginatedResponse[*models.Match], error)
	GetMatch(ctx context.Context, id int64) (*models.Match, error)
	CreateMatch(ctx context.Context, req *CreateMatchRequest) (*models.Match, error)
	UpdateMatchStatus(ctx context.Context, id int64, status string) (*models.Match, error)
	FinalizeMatch(ctx context.Context, req *FinalizeMatchRequest) (*models.Match, error)
}

// ArticleService manages club news, reactions and comments
type ArticleService interface {
	CreateArticle(ctx context.Context, req *CreateArticleRequest) (*models.Article, error)
	GetArticle(ctx context.Context, id int64, userID *int64) (*models.Article, error)
	ListArticles(ctx context.Context, category string, params models.PaginationParams, userID *int64) (*models.PaginatedResponse[*models.Article], error)
	ToggleReaction(ctx context.Context, articleID, userID int64) (reacted bool, err error)
	AddComment(ctx context.Context, req *AddCommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, articleID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error)
	UploadCoverImage(ctx context.Context, articleID int64, file multipart.File, header *multipart.FileHeader) (string, error)
	ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PollService manages fan polls
type PollService interface {
	CreatePoll(ctx context.Context, req *CreatePollRequest) (*models.Poll, error)
	ListPolls(ctx context.Context, openOnly bool, params models.PaginationParams) (*models.PaginatedResponse[*models.Poll], error)
	Vote(ctx context.Context, pollID, optionID, userID int64) (*models.PollResults, error)
	GetResults(ctx context.Context, pollID int64, userID *int64) (*models.PollResults, error)
}

// NewsletterService manages the double opt-in subscription list
type NewsletterService interface {
	Subscribe(ctx context.Context, email string) (*models.NewsletterSubscription, error)
	Confirm(ctx context.Context, token string) error
	Unsubscribe(ctx context.Context, email string) error
}

// ===============================
// REQUEST / RESPONSE DTOS
// ===============================

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest is the payload for password login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the signed token and the authenticated user
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// SubmitPredictionRequest is the payload for a score guess
type SubmitPredictionRequest struct {
	UserID    int64 `json:"-"`
	MatchID   int64 `json:"match_id" validate:"required"`
	HomeScore int   `json:"home_score_prediction" validate:"min=0,max=20"`
	AwayScore int   `json:"away_score_prediction" validate:"min=0,max=20"`
}

// CreateMatchRequest is the admin payload for adding a fixture
type CreateMatchRequest struct {
	Competition string    `json:"competition" validate:"required"`
	Opponent    string    `json:"opponent" validate:"required"`
	IsHome      bool      `json:"is_home"`
	Venue       string    `json:"venue"`
	KickoffAt   time.Time `json:"kickoff_at" validate:"required"`
}

// FinalizeMatchRequest is the admin payload for recording a final result
type FinalizeMatchRequest struct {
	MatchID   int64 `json:"-"`
	HomeScore int   `json:"home_score" validate:"min=0"`
	AwayScore int   `json:"away_score" validate:"min=0"`
}

// CreateArticleRequest is the admin payload for publishing news
type CreateArticleRequest struct {
	AuthorID int64  `json:"-"`
	Title    string `json:"title" validate:"required,max=200"`
	Summary  string `json:"summary" validate:"max=500"`
	Body     string `json:"body" validate:"required"`
	Category string `json:"category" validate:"required,max=50"`
}

// AddCommentRequest is the payload for commenting on an article
type AddCommentRequest struct {
	UserID    int64  `json:"-"`
	ArticleID int64  `json:"-"`
	Content   string `json:"content" validate:"required,min=1,max=2000"`
}

// CreatePollRequest is the admin payload for opening a poll
type CreatePollRequest struct {
	Question string     `json:"question" validate:"required,max=300"`
	Options  []string   `json:"options" validate:"required,min=2,max=10,dive,required,max=100"`
	ClosesAt *time.Time `json:"closes_at,omitempty"`
}

// TrackActionRequest is the payload for the generic engagement endpoint
type TrackActionRequest struct {
	Action string `json:"action" validate:"required,oneof=comparison dream_team quiz"`
}

// StatKeyForAction maps a tracked site action to its stat counter
func StatKeyForAction(action string) (string, bool) {
	switch action {
	case "comparison":
		return models.StatComparisons, true
	case "dream_team":
		return models.StatDreamTeams, true
	case "quiz":
		return models.StatQuizzes, true
	}
	return "", false
}
