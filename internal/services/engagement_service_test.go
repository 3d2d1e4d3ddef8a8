package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fanpulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStatStorage is an in-memory StatStorage for tests
type memStatStorage struct {
	stats  map[int64]*models.UserStats
	badges map[int64][]models.UnlockedBadge

	failGetStats  bool
	failSetStats  bool
	failGetBadges bool
}

func newMemStatStorage() *memStatStorage {
	return &memStatStorage{
		stats:  make(map[int64]*models.UserStats),
		badges: make(map[int64][]models.UnlockedBadge),
	}
}

func (m *memStatStorage) GetStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	if m.failGetStats {
		return nil, errors.New("storage down")
	}
	if s, ok := m.stats[userID]; ok {
		return s.Clone(), nil
	}
	return nil, nil
}

func (m *memStatStorage) SetStats(ctx context.Context, stats *models.UserStats) error {
	if m.failSetStats {
		return errors.New("storage down")
	}
	m.stats[stats.UserID] = stats.Clone()
	return nil
}

func (m *memStatStorage) GetBadges(ctx context.Context, userID int64) ([]models.UnlockedBadge, error) {
	if m.failGetBadges {
		return nil, errors.New("storage down")
	}
	return append([]models.UnlockedBadge(nil), m.badges[userID]...), nil
}

func (m *memStatStorage) SetBadges(ctx context.Context, userID int64, badges []models.UnlockedBadge) error {
	m.badges[userID] = append([]models.UnlockedBadge(nil), badges...)
	return nil
}

func (m *memStatStorage) Clear(ctx context.Context, userID int64) error {
	delete(m.stats, userID)
	delete(m.badges, userID)
	return nil
}

func newTestEngagement(t *testing.T, storage StatStorage) *engagementService {
	t.Helper()
	svc, ok := NewEngagementService(storage, nil, zap.NewNop()).(*engagementService)
	require.True(t, ok)
	return svc
}

func badgeIDs(badges []models.UnlockedBadge) []string {
	ids := make([]string, 0, len(badges))
	for _, b := range badges {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestIncrementStat_UnknownKey(t *testing.T) {
	svc := newTestEngagement(t, newMemStatStorage())

	_, err := svc.IncrementStat(context.Background(), 1, "goals_scored", 1)
	require.Error(t, err)

	serviceErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", serviceErr.Type)
}

func TestIncrementStat_ThresholdBoundary(t *testing.T) {
	storage := newMemStatStorage()
	svc := newTestEngagement(t, storage)
	ctx := context.Background()

	// 9 reactions: "reactor" (threshold 10) must stay locked
	var result *StatUpdateResult
	var err error
	for i := 0; i < 9; i++ {
		result, err = svc.IncrementStat(ctx, 1, models.StatReactions, 1)
		require.NoError(t, err)
	}
	assert.NotContains(t, badgeIDs(result.UnlockedBadges), "reactor")
	assert.Contains(t, badgeIDs(result.UnlockedBadges), "first_reaction")

	// the 10th crosses the threshold
	result, err = svc.IncrementStat(ctx, 1, models.StatReactions, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"reactor"}, badgeIDs(result.NewlyUnlocked))
}

func TestIncrementStat_UnlockIsIdempotent(t *testing.T) {
	storage := newMemStatStorage()
	svc := newTestEngagement(t, storage)
	ctx := context.Background()

	result, err := svc.IncrementStat(ctx, 1, models.StatComments, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"first_comment"}, badgeIDs(result.NewlyUnlocked))

	// further increments never re-unlock, and the unlocked set keeps one entry
	result, err = svc.IncrementStat(ctx, 1, models.StatComments, 1)
	require.NoError(t, err)
	assert.Empty(t, result.NewlyUnlocked)
	assert.Equal(t, []string{"first_comment"}, badgeIDs(result.UnlockedBadges))
}

func TestIncrementStat_CatalogOrderOnMultiUnlock(t *testing.T) {
	storage := newMemStatStorage()
	svc := newTestEngagement(t, storage)

	// one jump from 0 to 50 crosses three reaction thresholds at once
	result, err := svc.IncrementStat(context.Background(), 1, models.StatReactions, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_reaction", "reactor", "ultra"}, badgeIDs(result.NewlyUnlocked))
}

func TestIncrementStat_SurvivesGetStatsFailure(t *testing.T) {
	storage := newMemStatStorage()
	storage.failGetStats = true
	svc := newTestEngagement(t, storage)

	// unreadable stats degrade to an all-zero record instead of erroring
	result, err := svc.IncrementStat(context.Background(), 1, models.StatQuizzes, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Get(models.StatQuizzes))
}

func TestIncrementStat_SetStatsFailure(t *testing.T) {
	storage := newMemStatStorage()
	storage.failSetStats = true
	svc := newTestEngagement(t, storage)

	_, err := svc.IncrementStat(context.Background(), 1, models.StatQuizzes, 1)
	require.Error(t, err)

	serviceErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "INTERNAL_ERROR", serviceErr.Type)
}

func TestTrackVisit_StreakProgression(t *testing.T) {
	storage := newMemStatStorage()
	svc := newTestEngagement(t, storage)
	ctx := context.Background()

	day := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.nowFn = func() time.Time { return day }

	result, err := svc.TrackVisit(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Get(models.StatVisitStreak))

	// same day again is a no-op
	result, err = svc.TrackVisit(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Get(models.StatVisitStreak))

	// consecutive days extend the streak
	day = day.AddDate(0, 0, 1)
	result, err = svc.TrackVisit(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Get(models.StatVisitStreak))

	day = day.AddDate(0, 0, 1)
	result, err = svc.TrackVisit(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stats.Get(models.StatVisitStreak))
	assert.Contains(t, badgeIDs(result.NewlyUnlocked), "regular")

	// a two-day gap resets to 1
	day = day.AddDate(0, 0, 2)
	result, err = svc.TrackVisit(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Get(models.StatVisitStreak))

	// "regular" stays unlocked after the reset
	assert.Contains(t, badgeIDs(result.UnlockedBadges), "regular")
}

func TestRecordPredictionOutcome(t *testing.T) {
	storage := newMemStatStorage()
	svc := newTestEngagement(t, storage)
	ctx := context.Background()

	result, err := svc.RecordPredictionOutcome(ctx, 1, models.PointsExactScore)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Get(models.StatPerfectPredictions))
	assert.Equal(t, 1, result.Stats.Get(models.StatPredictionStreak))

	result, err = svc.RecordPredictionOutcome(ctx, 1, models.PointsCorrectOutcome)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Get(models.StatPerfectPredictions))
	assert.Equal(t, 2, result.Stats.Get(models.StatPredictionStreak))

	// a miss resets the streak but not perfect_predictions
	result, err = svc.RecordPredictionOutcome(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Get(models.StatPerfectPredictions))
	assert.Equal(t, 0, result.Stats.Get(models.StatPredictionStreak))
}

func TestNewBadge_LastUnlockWins(t *testing.T) {
	storage := newMemStatStorage()
	svc := newTestEngagement(t, storage)

	result, err := svc.IncrementStat(context.Background(), 1, models.StatReactions, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"first_reaction", "reactor"}, badgeIDs(result.NewlyUnlocked))

	newBadge := svc.NewBadge(1)
	require.NotNil(t, newBadge)
	assert.Equal(t, "reactor", newBadge.ID)

	// no notification for users without a recent unlock
	assert.Nil(t, svc.NewBadge(2))
}

func TestNewBadge_ClearsAfterWindow(t *testing.T) {
	storage := newMemStatStorage()
	svc := newTestEngagement(t, storage)
	svc.notifyTTL = 20 * time.Millisecond

	_, err := svc.IncrementStat(context.Background(), 1, models.StatComments, 1)
	require.NoError(t, err)
	require.NotNil(t, svc.NewBadge(1))

	assert.Eventually(t, func() bool {
		return svc.NewBadge(1) == nil
	}, time.Second, 5*time.Millisecond)
}

func TestNewBadge_LaterUnlockOutlivesEarlierTimer(t *testing.T) {
	storage := newMemStatStorage()
	svc := newTestEngagement(t, storage)
	svc.notifyTTL = 30 * time.Millisecond
	ctx := context.Background()

	_, err := svc.IncrementStat(ctx, 1, models.StatComments, 1)
	require.NoError(t, err)

	// a second unlock re-arms the notification; the first timer firing must
	// not clear it early
	time.Sleep(15 * time.Millisecond)
	_, err = svc.IncrementStat(ctx, 1, models.StatReactions, 1)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	newBadge := svc.NewBadge(1)
	require.NotNil(t, newBadge)
	assert.Equal(t, "first_reaction", newBadge.ID)

	assert.Eventually(t, func() bool {
		return svc.NewBadge(1) == nil
	}, time.Second, 5*time.Millisecond)
}

func TestEvaluateBadges_AgainstEmptySet(t *testing.T) {
	stats := models.NewUserStats(1)
	stats.Set(models.StatPredictions, 10)
	stats.Set(models.StatPerfectPredictions, 5)

	now := time.Now()
	newly := EvaluateBadges(stats, nil, now)
	assert.Equal(t, []string{"first_prediction", "pundit", "crystal_ball"}, badgeIDs(newly))
	for _, b := range newly {
		assert.Equal(t, now, b.UnlockedAt)
	}
}

func TestBadgeProgressFor(t *testing.T) {
	stats := models.NewUserStats(1)
	stats.Set(models.StatComments, 5)

	badge, ok := BadgeByID("voice_of_the_stands")
	require.True(t, ok)

	// 5 of 25 comments
	assert.Equal(t, 20, BadgeProgressFor(badge, stats))

	stats.Set(models.StatComments, 100)
	assert.Equal(t, 100, BadgeProgressFor(badge, stats))

	// 5 of 10 reactions is halfway to "reactor", with first_reaction long unlocked
	stats.Set(models.StatReactions, 5)
	reactor, ok := BadgeByID("reactor")
	require.True(t, ok)
	assert.Equal(t, 50, BadgeProgressFor(reactor, stats))
}

func TestGetBadgeProgress_MarksUnlocked(t *testing.T) {
	storage := newMemStatStorage()
	svc := newTestEngagement(t, storage)
	ctx := context.Background()

	_, err := svc.IncrementStat(ctx, 1, models.StatDreamTeams, 1)
	require.NoError(t, err)

	progress, err := svc.GetBadgeProgress(ctx, 1)
	require.NoError(t, err)
	require.Len(t, progress, len(BadgeCatalog()))

	byID := make(map[string]models.BadgeProgress, len(progress))
	for _, p := range progress {
		byID[p.Badge.ID] = p
	}
	assert.True(t, byID["gaffer"].Unlocked)
	assert.Equal(t, 100, byID["gaffer"].Progress)
	assert.False(t, byID["regular"].Unlocked)
	assert.Equal(t, 0, byID["regular"].Progress)
}
