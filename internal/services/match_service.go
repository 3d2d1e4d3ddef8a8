package services

import (
	"context"
	"time"

	"fanpulse/internal/events"
	"fanpulse/internal/models"
	"fanpulse/internal/repositories"

	"go.uber.org/zap"
)

// matchService implements MatchService
type matchService struct {
	matchRepo   repositories.MatchRepository
	predictions PredictionService
	leaderboard LeaderboardService
	events      events.EventBus
	logger      *zap.Logger
}

// NewMatchService creates a new match service
func NewMatchService(
	matchRepo repositories.MatchRepository,
	predictions PredictionService,
	leaderboard LeaderboardService,
	bus events.EventBus,
	logger *zap.Logger,
) MatchService {
	return &matchService{
		matchRepo:   matchRepo,
		predictions: predictions,
		leaderboard: leaderboard,
		events:      bus,
		logger:      logger,
	}
}

// ListMatches returns matches, optionally filtered by status
func (s *matchService) ListMatches(ctx context.Context, status string, params models.PaginationParams) (*models.PaginatedResponse[*models.Match], error) {
	if status != "" && !models.ValidMatchStatus(status) {
		return nil, NewValidationError("unknown match status", nil)
	}
	page, err := s.matchRepo.List(ctx, status, params)
	if err != nil {
		return nil, NewInternalError("failed to list matches")
	}
	return page, nil
}

// GetMatch returns one match by id
func (s *matchService) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewInternalError("failed to load match")
	}
	if match == nil {
		return nil, NewNotFoundError("match not found")
	}
	return match, nil
}

// CreateMatch adds a fixture to the calendar (admin only, enforced upstream)
func (s *matchService) CreateMatch(ctx context.Context, req *CreateMatchRequest) (*models.Match, error) {
	if req.Opponent == "" || req.Competition == "" {
		return nil, NewValidationError("opponent and competition are required", nil)
	}
	if req.KickoffAt.IsZero() {
		return nil, NewValidationError("kickoff time is required", nil)
	}

	match := &models.Match{
		Competition: req.Competition,
		Opponent:    req.Opponent,
		IsHome:      req.IsHome,
		Venue:       req.Venue,
		KickoffAt:   req.KickoffAt,
		Status:      models.MatchStatusUpcoming,
	}
	if err := s.matchRepo.Create(ctx, match); err != nil {
		s.logger.Error("failed to create match", zap.Error(err))
		return nil, NewInternalError("failed to create match")
	}
	return match, nil
}

// UpdateMatchStatus moves a match between non-final statuses (live, postponed,
// back to upcoming). Finishing a match goes through FinalizeMatch only.
func (s *matchService) UpdateMatchStatus(ctx context.Context, id int64, status string) (*models.Match, error) {
	if !models.ValidMatchStatus(status) {
		return nil, NewValidationError("unknown match status", nil)
	}
	if status == models.MatchStatusFinished {
		return nil, NewBusinessError("use finalize to finish a match", "USE_FINALIZE")
	}

	match, err := s.GetMatch(ctx, id)
	if err != nil {
		return nil, err
	}
	if match.IsFinished() {
		return nil, NewBusinessError("a finished match cannot change status", "MATCH_FINISHED")
	}

	match.Status = status
	if err := s.matchRepo.Update(ctx, match); err != nil {
		return nil, NewInternalError("failed to update match")
	}
	return match, nil
}

// FinalizeMatch records the final score, moves the match to finished, and
// scores every pending prediction. The transition happens once: a second
// finalize attempt is rejected, which is what keeps scoring single-shot.
func (s *matchService) FinalizeMatch(ctx context.Context, req *FinalizeMatchRequest) (*models.Match, error) {
	if req.HomeScore < 0 || req.AwayScore < 0 {
		return nil, NewValidationError("final scores must be non-negative", nil)
	}

	match, err := s.GetMatch(ctx, req.MatchID)
	if err != nil {
		return nil, err
	}
	if match.IsFinished() {
		// The recorded result is immutable, but a repeat finalize resumes an
		// interrupted scoring pass: only rows with NULL points are rescored.
		return s.resumeScoring(ctx, match)
	}

	home, away := req.HomeScore, req.AwayScore
	match.HomeScore = &home
	match.AwayScore = &away
	match.Status = models.MatchStatusFinished
	if err := s.matchRepo.Update(ctx, match); err != nil {
		s.logger.Error("failed to finalize match", zap.Int64("match_id", match.ID), zap.Error(err))
		return nil, NewInternalError("failed to finalize match")
	}

	scored, err := s.predictions.ScoreMatchPredictions(ctx, match)
	if err != nil {
		// The match stays finished; unscored rows will be picked up by a
		// retried finalize-scoring pass.
		s.logger.Error("prediction scoring incomplete",
			zap.Int64("match_id", match.ID),
			zap.Int("scored", scored),
			zap.Error(err),
		)
		return nil, err
	}

	s.leaderboard.Invalidate(ctx)

	if s.events != nil {
		_ = s.events.Publish(ctx, events.NewMatchFinalizedEvent(match.ID, home, away, scored))
		_ = s.events.Publish(ctx, events.NewLeaderboardUpdatedEvent(match.ID))
	}

	s.logger.Info("match finalized",
		zap.Int64("match_id", match.ID),
		zap.Int("home_score", home),
		zap.Int("away_score", away),
		zap.Int("predictions_scored", scored),
		zap.Time("finalized_at", time.Now()),
	)
	return match, nil
}

// resumeScoring rescores whatever a previous finalize left unscored. The
// stored result stands; when nothing is pending this is a no-op.
func (s *matchService) resumeScoring(ctx context.Context, match *models.Match) (*models.Match, error) {
	scored, err := s.predictions.ScoreMatchPredictions(ctx, match)
	if err != nil {
		return nil, err
	}
	if scored == 0 {
		return match, nil
	}

	s.leaderboard.Invalidate(ctx)
	if s.events != nil {
		_ = s.events.Publish(ctx, events.NewLeaderboardUpdatedEvent(match.ID))
	}

	s.logger.Info("resumed scoring for finalized match",
		zap.Int64("match_id", match.ID),
		zap.Int("predictions_scored", scored),
	)
	return match, nil
}
