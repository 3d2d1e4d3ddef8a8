package services

import (
	"fanpulse/internal/cache"
	"fanpulse/internal/config"
	"fanpulse/internal/database"
	"fanpulse/internal/events"
	"fanpulse/internal/repositories"
	"fanpulse/internal/utils"

	"go.uber.org/zap"
)

// RepositoryCollection groups every repository behind one handle
type RepositoryCollection struct {
	User       repositories.UserRepository
	Match      repositories.MatchRepository
	Prediction repositories.PredictionRepository
	Stats      repositories.StatsRepository
	Article    repositories.ArticleRepository
	Poll       repositories.PollRepository
	Newsletter repositories.NewsletterRepository
}

// ServiceCollection wires repositories into the service layer once at startup
type ServiceCollection struct {
	Repositories *RepositoryCollection

	auth        AuthService
	engagement  EngagementService
	predictions PredictionService
	leaderboard LeaderboardService
	matches     MatchService
	articles    ArticleService
	polls       PollService
	newsletter  NewsletterService

	logger *zap.Logger
}

// NewServiceCollection builds every repository and service. uploader may be
// nil when Cloudinary is not configured.
func NewServiceCollection(
	db *database.Manager,
	c cache.Cache,
	bus events.EventBus,
	cfg *config.Config,
	uploader *utils.CloudinaryService,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	repos := &RepositoryCollection{
		User:       repositories.NewUserRepository(db, logger),
		Match:      repositories.NewMatchRepository(db, logger),
		Prediction: repositories.NewPredictionRepository(db, logger),
		Stats:      repositories.NewStatsRepository(db, logger),
		Article:    repositories.NewArticleRepository(db, logger),
		Poll:       repositories.NewPollRepository(db, logger),
		Newsletter: repositories.NewNewsletterRepository(db, logger),
	}

	authConfig := DefaultAuthServiceConfig()
	authConfig.JWTSecret = cfg.Auth.JWTSecret
	authConfig.JWTExpiry = cfg.Auth.JWTExpiry

	engagement := NewEngagementService(repos.Stats, bus, logger)
	predictions := NewPredictionService(repos.Prediction, repos.Match, engagement, bus, logger)
	leaderboard := NewLeaderboardService(repos.Prediction, c, logger)

	sc := &ServiceCollection{
		Repositories: repos,
		auth:         NewAuthService(repos.User, authConfig, logger),
		engagement:   engagement,
		predictions:  predictions,
		leaderboard:  leaderboard,
		matches:      NewMatchService(repos.Match, predictions, leaderboard, bus, logger),
		articles:     NewArticleService(repos.Article, engagement, uploader, bus, logger),
		polls:        NewPollService(repos.Poll, logger),
		newsletter:   NewNewsletterService(repos.Newsletter, logger),
		logger:       logger,
	}
	return sc, nil
}

// GetAuthService returns the auth service
func (sc *ServiceCollection) GetAuthService() AuthService { return sc.auth }

// GetEngagementService returns the engagement service
func (sc *ServiceCollection) GetEngagementService() EngagementService { return sc.engagement }

// GetPredictionService returns the prediction service
func (sc *ServiceCollection) GetPredictionService() PredictionService { return sc.predictions }

// GetLeaderboardService returns the leaderboard service
func (sc *ServiceCollection) GetLeaderboardService() LeaderboardService { return sc.leaderboard }

// GetMatchService returns the match service
func (sc *ServiceCollection) GetMatchService() MatchService { return sc.matches }

// GetArticleService returns the article service
func (sc *ServiceCollection) GetArticleService() ArticleService { return sc.articles }

// GetPollService returns the poll service
func (sc *ServiceCollection) GetPollService() PollService { return sc.polls }

// GetNewsletterService returns the newsletter service
func (sc *ServiceCollection) GetNewsletterService() NewsletterService { return sc.newsletter }
