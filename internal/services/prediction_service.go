package services

import (
	"context"

	"fanpulse/internal/events"
	"fanpulse/internal/models"
	"fanpulse/internal/repositories"

	"go.uber.org/zap"
)

// matchOutcome categorizes a final score from the home side's point of view
type matchOutcome int

const (
	outcomeHomeWin matchOutcome = iota
	outcomeDraw
	outcomeAwayWin
)

func outcomeOf(home, away int) matchOutcome {
	switch {
	case home > away:
		return outcomeHomeWin
	case home < away:
		return outcomeAwayWin
	default:
		return outcomeDraw
	}
}

// ScorePrediction computes the points for a guess against the actual result:
// 3 for the exact score, 1 when the win/draw/loss outcome matches, 0 otherwise.
func ScorePrediction(predHome, predAway, homeScore, awayScore int) int {
	if predHome == homeScore && predAway == awayScore {
		return models.PointsExactScore
	}
	if outcomeOf(predHome, predAway) == outcomeOf(homeScore, awayScore) {
		return models.PointsCorrectOutcome
	}
	return models.PointsMiss
}

// predictionService implements PredictionService
type predictionService struct {
	predictionRepo repositories.PredictionRepository
	matchRepo      repositories.MatchRepository
	engagement     EngagementService
	events         events.EventBus
	logger         *zap.Logger
}

// NewPredictionService creates a new prediction service
func NewPredictionService(
	predictionRepo repositories.PredictionRepository,
	matchRepo repositories.MatchRepository,
	engagement EngagementService,
	bus events.EventBus,
	logger *zap.Logger,
) PredictionService {
	return &predictionService{
		predictionRepo: predictionRepo,
		matchRepo:      matchRepo,
		engagement:     engagement,
		events:         bus,
		logger:         logger,
	}
}

// SubmitPrediction records a guess for an upcoming match. One prediction per
// (user, match); the input gate closes the moment the match leaves upcoming.
func (s *predictionService) SubmitPrediction(ctx context.Context, req *SubmitPredictionRequest) (*models.Prediction, error) {
	if req.HomeScore < 0 || req.AwayScore < 0 {
		return nil, NewValidationError("predicted scores must be non-negative", nil)
	}
	if req.HomeScore > models.MaxPredictedGoals || req.AwayScore > models.MaxPredictedGoals {
		return nil, NewValidationError("predicted score is implausibly high", nil)
	}

	match, err := s.matchRepo.GetByID(ctx, req.MatchID)
	if err != nil {
		return nil, NewInternalError("failed to load match")
	}
	if match == nil {
		return nil, NewNotFoundError("match not found")
	}
	if !match.IsUpcoming() {
		return nil, NewBusinessError("predictions are closed for this match", "PREDICTIONS_CLOSED")
	}

	existing, err := s.predictionRepo.GetByUserAndMatch(ctx, req.UserID, req.MatchID)
	if err != nil {
		return nil, NewInternalError("failed to check existing prediction")
	}
	if existing != nil {
		return nil, NewConflictError("a prediction for this match already exists", "PREDICTION_EXISTS")
	}

	prediction := &models.Prediction{
		UserID:        req.UserID,
		MatchID:       req.MatchID,
		HomeScorePred: req.HomeScore,
		AwayScorePred: req.AwayScore,
	}
	if err := s.predictionRepo.Create(ctx, prediction); err != nil {
		if s.predictionRepo.IsDuplicate(err) {
			// The unique constraint caught a race between two submissions.
			return nil, NewConflictError("a prediction for this match already exists", "PREDICTION_EXISTS")
		}
		s.logger.Error("failed to create prediction",
			zap.Int64("user_id", req.UserID),
			zap.Int64("match_id", req.MatchID),
			zap.Error(err),
		)
		return nil, NewInternalError("failed to create prediction")
	}

	if _, err := s.engagement.IncrementStat(ctx, req.UserID, models.StatPredictions, 1); err != nil {
		s.logger.Warn("failed to bump prediction stat", zap.Error(err))
	}

	s.logger.Info("prediction submitted",
		zap.Int64("user_id", req.UserID),
		zap.Int64("match_id", req.MatchID),
		zap.Int("home", req.HomeScore),
		zap.Int("away", req.AwayScore),
	)
	return prediction, nil
}

// GetUserPredictions lists the user's predictions, newest first
func (s *predictionService) GetUserPredictions(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Prediction], error) {
	page, err := s.predictionRepo.GetByUser(ctx, userID, params)
	if err != nil {
		return nil, NewInternalError("failed to list predictions")
	}
	return page, nil
}

// GetMatchPrediction returns the user's prediction for a match, nil when none
func (s *predictionService) GetMatchPrediction(ctx context.Context, userID, matchID int64) (*models.Prediction, error) {
	prediction, err := s.predictionRepo.GetByUserAndMatch(ctx, userID, matchID)
	if err != nil {
		return nil, NewInternalError("failed to load prediction")
	}
	return prediction, nil
}

// ScoreMatchPredictions scores every unscored prediction for a finished match
// and folds the outcomes into each predictor's engagement counters. Rows that
// already carry points are left untouched, so an interrupted run is resumable.
func (s *predictionService) ScoreMatchPredictions(ctx context.Context, match *models.Match) (int, error) {
	if !match.IsFinished() || match.HomeScore == nil || match.AwayScore == nil {
		return 0, NewBusinessError("match has no final result to score against", "MATCH_NOT_FINISHED")
	}

	pending, err := s.predictionRepo.GetUnscoredByMatch(ctx, match.ID)
	if err != nil {
		return 0, NewInternalError("failed to load predictions for scoring")
	}

	scored := 0
	for _, p := range pending {
		points := ScorePrediction(p.HomeScorePred, p.AwayScorePred, *match.HomeScore, *match.AwayScore)
		if err := s.predictionRepo.SetPoints(ctx, p.ID, points); err != nil {
			s.logger.Error("failed to store prediction points",
				zap.Int64("prediction_id", p.ID),
				zap.Error(err),
			)
			return scored, NewInternalError("failed to store prediction points")
		}
		scored++

		if _, err := s.engagement.RecordPredictionOutcome(ctx, p.UserID, points); err != nil {
			s.logger.Warn("failed to record prediction outcome",
				zap.Int64("user_id", p.UserID),
				zap.Error(err),
			)
		}
		if s.events != nil {
			_ = s.events.Publish(ctx, events.NewPredictionScoredEvent(p.UserID, match.ID, points))
		}
	}

	s.logger.Info("match predictions scored",
		zap.Int64("match_id", match.ID),
		zap.Int("scored", scored),
	)
	return scored, nil
}
