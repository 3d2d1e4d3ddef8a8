package services

import (
	"context"
	"testing"

	"fanpulse/internal/cache"
	"fanpulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scoredPrediction builds a scored row the way GetAllScored returns them
func scoredPrediction(userID int64, username string, points int) *models.Prediction {
	return &models.Prediction{
		UserID:       userID,
		Username:     username,
		PointsEarned: intPtr(points),
	}
}

func TestComputeLeaderboard_Totals(t *testing.T) {
	predictions := []*models.Prediction{
		scoredPrediction(1, "amina", 3),
		scoredPrediction(1, "amina", 1),
		scoredPrediction(1, "amina", 0),
		{UserID: 1, Username: "amina"}, // unscored, ignored
		scoredPrediction(2, "brian", 3),
		scoredPrediction(2, "brian", 3),
	}

	entries := ComputeLeaderboard(predictions)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(2), entries[0].UserID)
	assert.Equal(t, 6, entries[0].TotalPoints)
	assert.Equal(t, 2, entries[0].CorrectScores)
	assert.Equal(t, 2, entries[0].TotalPredictions)
	assert.Equal(t, 1, entries[0].Rank)

	assert.Equal(t, int64(1), entries[1].UserID)
	assert.Equal(t, 4, entries[1].TotalPoints)
	assert.Equal(t, 1, entries[1].CorrectScores)
	assert.Equal(t, 3, entries[1].TotalPredictions)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestComputeLeaderboard_TrailingStreak(t *testing.T) {
	// points in play order: 3, 1, 0, 3, 3 -> the trailing run is 2
	predictions := []*models.Prediction{
		scoredPrediction(1, "amina", 3),
		scoredPrediction(1, "amina", 1),
		scoredPrediction(1, "amina", 0),
		scoredPrediction(1, "amina", 3),
		scoredPrediction(1, "amina", 3),
	}

	entries := ComputeLeaderboard(predictions)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].CurrentStreak)

	// a final miss zeroes the streak
	predictions = append(predictions, scoredPrediction(1, "amina", 0))
	entries = ComputeLeaderboard(predictions)
	assert.Equal(t, 0, entries[0].CurrentStreak)
}

func TestComputeLeaderboard_TieBreakChain(t *testing.T) {
	predictions := []*models.Prediction{
		// user 1: 6 points from 2 exact scores, 2 predictions
		scoredPrediction(1, "amina", 3),
		scoredPrediction(1, "amina", 3),
		// user 2: 6 points from 1 exact + 3 outcomes, 4 predictions
		scoredPrediction(2, "brian", 3),
		scoredPrediction(2, "brian", 1),
		scoredPrediction(2, "brian", 1),
		scoredPrediction(2, "brian", 1),
		// user 3: 6 points, same shape as user 4 but lower id
		scoredPrediction(3, "chris", 3),
		scoredPrediction(3, "chris", 3),
		scoredPrediction(3, "chris", 0),
		scoredPrediction(4, "dana", 3),
		scoredPrediction(4, "dana", 3),
		scoredPrediction(4, "dana", 0),
	}

	entries := ComputeLeaderboard(predictions)
	require.Len(t, entries, 4)

	// equal points: more exact scores first, then fewer attempts, then user id
	assert.Equal(t, int64(1), entries[0].UserID) // 2 exacts, 2 attempts
	assert.Equal(t, int64(3), entries[1].UserID) // 2 exacts, 3 attempts, id 3
	assert.Equal(t, int64(4), entries[2].UserID) // 2 exacts, 3 attempts, id 4
	assert.Equal(t, int64(2), entries[3].UserID) // 1 exact

	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Rank)
	}
}

func TestComputeLeaderboard_Empty(t *testing.T) {
	assert.Empty(t, ComputeLeaderboard(nil))
	assert.Empty(t, ComputeLeaderboard([]*models.Prediction{{UserID: 1}}))
}

func newTestLeaderboard(t *testing.T, repo *memPredictionRepo, c cache.Cache) LeaderboardService {
	t.Helper()
	return NewLeaderboardService(repo, c, zap.NewNop())
}

func TestGetLeaderboard_Limit(t *testing.T) {
	repo := &memPredictionRepo{predictions: []*models.Prediction{
		scoredPrediction(1, "amina", 3),
		scoredPrediction(2, "brian", 1),
		scoredPrediction(3, "chris", 0),
	}}
	svc := newTestLeaderboard(t, repo, nil)

	entries, err := svc.GetLeaderboard(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].UserID)

	// limit 0 means all
	entries, err = svc.GetLeaderboard(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestGetUserRank(t *testing.T) {
	repo := &memPredictionRepo{predictions: []*models.Prediction{
		scoredPrediction(1, "amina", 3),
		scoredPrediction(2, "brian", 1),
	}}
	svc := newTestLeaderboard(t, repo, nil)

	entry, err := svc.GetUserRank(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 2, entry.Rank)

	// a user with no scored predictions is unranked
	entry, err = svc.GetUserRank(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestGetLeaderboard_CachesStandings(t *testing.T) {
	repo := &memPredictionRepo{predictions: []*models.Prediction{
		scoredPrediction(1, "amina", 3),
	}}
	c := cache.NewMemoryCache(zap.NewNop())
	defer c.Close()
	svc := newTestLeaderboard(t, repo, c)
	ctx := context.Background()

	entries, err := svc.GetLeaderboard(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// a new scored row is invisible until the cache is dropped
	repo.predictions = append(repo.predictions, scoredPrediction(2, "brian", 3))
	entries, err = svc.GetLeaderboard(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	svc.Invalidate(ctx)
	entries, err = svc.GetLeaderboard(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
