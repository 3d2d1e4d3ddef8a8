package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fanpulse/internal/events"
	"fanpulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMatchService(t *testing.T) (MatchService, *memPredictionRepo, *memMatchRepo, events.EventBus) {
	t.Helper()
	logger := zap.NewNop()
	predictionRepo := &memPredictionRepo{}
	matchRepo := &memMatchRepo{matches: make(map[int64]*models.Match)}
	engagement := NewEngagementService(newMemStatStorage(), nil, logger)
	predictions := NewPredictionService(predictionRepo, matchRepo, engagement, nil, logger)
	leaderboard := NewLeaderboardService(predictionRepo, nil, logger)
	bus := events.NewInMemoryEventBus(logger)
	svc := NewMatchService(matchRepo, predictions, leaderboard, bus, logger)
	return svc, predictionRepo, matchRepo, bus
}

func TestCreateMatch(t *testing.T) {
	svc, _, matchRepo, _ := newTestMatchService(t)

	match, err := svc.CreateMatch(context.Background(), &CreateMatchRequest{
		Competition: "League",
		Opponent:    "Rovers",
		IsHome:      true,
		Venue:       "Home Ground",
		KickoffAt:   time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusUpcoming, match.Status)
	assert.Contains(t, matchRepo.matches, match.ID)
}

func TestCreateMatch_Validation(t *testing.T) {
	svc, _, _, _ := newTestMatchService(t)
	ctx := context.Background()

	_, err := svc.CreateMatch(ctx, &CreateMatchRequest{Competition: "League", KickoffAt: time.Now()})
	require.Error(t, err)

	_, err = svc.CreateMatch(ctx, &CreateMatchRequest{Competition: "League", Opponent: "Rovers"})
	require.Error(t, err)
}

func TestUpdateMatchStatus(t *testing.T) {
	svc, _, matchRepo, _ := newTestMatchService(t)
	ctx := context.Background()

	matchRepo.matches[1] = &models.Match{ID: 1, Status: models.MatchStatusUpcoming}

	match, err := svc.UpdateMatchStatus(ctx, 1, models.MatchStatusLive)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusLive, match.Status)

	// finished is only reachable through finalize
	_, err = svc.UpdateMatchStatus(ctx, 1, models.MatchStatusFinished)
	require.Error(t, err)
	serviceErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "USE_FINALIZE", serviceErr.Code)

	// finished matches are immutable
	matchRepo.matches[2] = &models.Match{ID: 2, Status: models.MatchStatusFinished}
	_, err = svc.UpdateMatchStatus(ctx, 2, models.MatchStatusLive)
	require.Error(t, err)
	serviceErr, ok = AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "MATCH_FINISHED", serviceErr.Code)
}

func TestFinalizeMatch(t *testing.T) {
	svc, predictionRepo, matchRepo, _ := newTestMatchService(t)
	ctx := context.Background()

	matchRepo.matches[1] = &models.Match{ID: 1, Status: models.MatchStatusLive}
	predictionRepo.predictions = []*models.Prediction{
		{ID: 1, UserID: 1, MatchID: 1, HomeScorePred: 2, AwayScorePred: 0},
		{ID: 2, UserID: 2, MatchID: 1, HomeScorePred: 1, AwayScorePred: 1},
	}
	predictionRepo.nextID = 2

	match, err := svc.FinalizeMatch(ctx, &FinalizeMatchRequest{MatchID: 1, HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusFinished, match.Status)
	require.NotNil(t, match.HomeScore)
	assert.Equal(t, 2, *match.HomeScore)

	// both predictions were scored
	require.NotNil(t, predictionRepo.predictions[0].PointsEarned)
	assert.Equal(t, 3, *predictionRepo.predictions[0].PointsEarned)
	require.NotNil(t, predictionRepo.predictions[1].PointsEarned)
	assert.Equal(t, 0, *predictionRepo.predictions[1].PointsEarned)
}

func TestFinalizeMatch_ResultIsImmutable(t *testing.T) {
	svc, _, matchRepo, _ := newTestMatchService(t)
	ctx := context.Background()

	matchRepo.matches[1] = &models.Match{ID: 1, Status: models.MatchStatusUpcoming}

	_, err := svc.FinalizeMatch(ctx, &FinalizeMatchRequest{MatchID: 1, HomeScore: 1, AwayScore: 0})
	require.NoError(t, err)

	// a repeat finalize is a no-op resume, never a rewrite
	match, err := svc.FinalizeMatch(ctx, &FinalizeMatchRequest{MatchID: 1, HomeScore: 3, AwayScore: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, *match.HomeScore)
	assert.Equal(t, 1, *matchRepo.matches[1].HomeScore)
}

func TestFinalizeMatch_ResumesInterruptedScoring(t *testing.T) {
	svc, predictionRepo, matchRepo, _ := newTestMatchService(t)
	ctx := context.Background()

	matchRepo.matches[1] = &models.Match{ID: 1, Status: models.MatchStatusLive}
	predictionRepo.predictions = []*models.Prediction{
		{ID: 1, UserID: 1, MatchID: 1, HomeScorePred: 2, AwayScorePred: 0},
		{ID: 2, UserID: 2, MatchID: 1, HomeScorePred: 1, AwayScorePred: 1},
	}
	predictionRepo.nextID = 2
	predictionRepo.setPointsFailures = map[int64]error{2: errors.New("connection reset")}

	// the first pass dies on the second row, with the match left finished
	_, err := svc.FinalizeMatch(ctx, &FinalizeMatchRequest{MatchID: 1, HomeScore: 2, AwayScore: 0})
	require.Error(t, err)
	assert.Equal(t, models.MatchStatusFinished, matchRepo.matches[1].Status)
	require.NotNil(t, predictionRepo.predictions[0].PointsEarned)
	assert.Nil(t, predictionRepo.predictions[1].PointsEarned)

	// a repeat finalize picks up the row the first pass missed
	match, err := svc.FinalizeMatch(ctx, &FinalizeMatchRequest{MatchID: 1, HomeScore: 2, AwayScore: 0})
	require.NoError(t, err)
	assert.Equal(t, 2, *match.HomeScore)
	require.NotNil(t, predictionRepo.predictions[1].PointsEarned)
	assert.Equal(t, 0, *predictionRepo.predictions[1].PointsEarned)

	// the already-scored row was not rescored to a different value
	assert.Equal(t, 3, *predictionRepo.predictions[0].PointsEarned)
}

func TestFinalizeMatch_NegativeScore(t *testing.T) {
	svc, _, matchRepo, _ := newTestMatchService(t)

	matchRepo.matches[1] = &models.Match{ID: 1, Status: models.MatchStatusLive}

	_, err := svc.FinalizeMatch(context.Background(), &FinalizeMatchRequest{MatchID: 1, HomeScore: -1, AwayScore: 0})
	require.Error(t, err)
	serviceErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", serviceErr.Type)
}

func TestListMatches_UnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestMatchService(t)

	_, err := svc.ListMatches(context.Background(), "abandoned", models.DefaultPaginationParams())
	require.Error(t, err)
}
