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

// memPredictionRepo is an in-memory PredictionRepository for tests
type memPredictionRepo struct {
	nextID      int64
	predictions []*models.Prediction
	createErr   error

	// one-shot SetPoints failures keyed by prediction id
	setPointsFailures map[int64]error
}

func (m *memPredictionRepo) Create(ctx context.Context, p *models.Prediction) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	p.ID = m.nextID
	m.predictions = append(m.predictions, p)
	return nil
}

func (m *memPredictionRepo) GetByUserAndMatch(ctx context.Context, userID, matchID int64) (*models.Prediction, error) {
	for _, p := range m.predictions {
		if p.UserID == userID && p.MatchID == matchID {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memPredictionRepo) GetByUser(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Prediction], error) {
	var mine []*models.Prediction
	for _, p := range m.predictions {
		if p.UserID == userID {
			mine = append(mine, p)
		}
	}
	return &models.PaginatedResponse[*models.Prediction]{
		Data:       mine,
		Pagination: models.NewPaginationMeta(params, int64(len(mine))),
	}, nil
}

func (m *memPredictionRepo) GetUnscoredByMatch(ctx context.Context, matchID int64) ([]*models.Prediction, error) {
	var pending []*models.Prediction
	for _, p := range m.predictions {
		if p.MatchID == matchID && p.PointsEarned == nil {
			pending = append(pending, p)
		}
	}
	return pending, nil
}

func (m *memPredictionRepo) GetAllScored(ctx context.Context) ([]*models.Prediction, error) {
	var scored []*models.Prediction
	for _, p := range m.predictions {
		if p.PointsEarned != nil {
			scored = append(scored, p)
		}
	}
	return scored, nil
}

func (m *memPredictionRepo) SetPoints(ctx context.Context, predictionID int64, points int) error {
	if err, ok := m.setPointsFailures[predictionID]; ok {
		delete(m.setPointsFailures, predictionID)
		return err
	}
	for _, p := range m.predictions {
		if p.ID == predictionID {
			v := points
			p.PointsEarned = &v
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memPredictionRepo) IsDuplicate(err error) bool {
	return errors.Is(err, errDuplicateRow)
}

var errDuplicateRow = errors.New("duplicate row")

// memMatchRepo is an in-memory MatchRepository for tests
type memMatchRepo struct {
	matches map[int64]*models.Match
}

func (m *memMatchRepo) Create(ctx context.Context, match *models.Match) error {
	m.matches[match.ID] = match
	return nil
}

func (m *memMatchRepo) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	return m.matches[id], nil
}

func (m *memMatchRepo) Update(ctx context.Context, match *models.Match) error {
	m.matches[match.ID] = match
	return nil
}

func (m *memMatchRepo) List(ctx context.Context, status string, params models.PaginationParams) (*models.PaginatedResponse[*models.Match], error) {
	return &models.PaginatedResponse[*models.Match]{
		Data:       []*models.Match{},
		Pagination: models.NewPaginationMeta(params, 0),
	}, nil
}

func newTestPredictionService(t *testing.T) (PredictionService, *memPredictionRepo, *memMatchRepo, EngagementService) {
	t.Helper()
	predictionRepo := &memPredictionRepo{}
	matchRepo := &memMatchRepo{matches: make(map[int64]*models.Match)}
	engagement := NewEngagementService(newMemStatStorage(), nil, zap.NewNop())
	svc := NewPredictionService(predictionRepo, matchRepo, engagement, nil, zap.NewNop())
	return svc, predictionRepo, matchRepo, engagement
}

func intPtr(v int) *int { return &v }

func TestScorePrediction(t *testing.T) {
	tests := []struct {
		name                 string
		predHome, predAway   int
		matchHome, matchAway int
		want                 int
	}{
		{"exact score", 2, 1, 2, 1, models.PointsExactScore},
		{"exact nil-nil", 0, 0, 0, 0, models.PointsExactScore},
		{"right outcome wrong score", 3, 1, 2, 0, models.PointsCorrectOutcome},
		{"draw predicted draw played", 1, 1, 2, 2, models.PointsCorrectOutcome},
		{"away win matched", 0, 2, 1, 3, models.PointsCorrectOutcome},
		{"predicted win got draw", 2, 1, 1, 1, models.PointsMiss},
		{"predicted win got loss", 1, 0, 0, 2, models.PointsMiss},
		{"predicted draw got win", 0, 0, 3, 0, models.PointsMiss},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScorePrediction(tt.predHome, tt.predAway, tt.matchHome, tt.matchAway)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubmitPrediction(t *testing.T) {
	svc, _, matchRepo, _ := newTestPredictionService(t)
	ctx := context.Background()

	matchRepo.matches[10] = &models.Match{
		ID:        10,
		Opponent:  "Rovers",
		Status:    models.MatchStatusUpcoming,
		KickoffAt: time.Now().Add(24 * time.Hour),
	}

	prediction, err := svc.SubmitPrediction(ctx, &SubmitPredictionRequest{
		UserID: 1, MatchID: 10, HomeScore: 2, AwayScore: 1,
	})
	require.NoError(t, err)
	assert.NotZero(t, prediction.ID)
	assert.Equal(t, 2, prediction.HomeScorePred)
	assert.Equal(t, 1, prediction.AwayScorePred)
	assert.Nil(t, prediction.PointsEarned)
}

func TestSubmitPrediction_BumpsPredictionStat(t *testing.T) {
	svc, _, matchRepo, engagement := newTestPredictionService(t)
	ctx := context.Background()

	matchRepo.matches[10] = &models.Match{ID: 10, Status: models.MatchStatusUpcoming}

	_, err := svc.SubmitPrediction(ctx, &SubmitPredictionRequest{UserID: 1, MatchID: 10, HomeScore: 1, AwayScore: 0})
	require.NoError(t, err)

	stats, err := engagement.GetStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Get(models.StatPredictions))
}

func TestSubmitPrediction_Rejections(t *testing.T) {
	svc, _, matchRepo, _ := newTestPredictionService(t)
	ctx := context.Background()

	matchRepo.matches[10] = &models.Match{ID: 10, Status: models.MatchStatusUpcoming}
	matchRepo.matches[11] = &models.Match{ID: 11, Status: models.MatchStatusLive}
	matchRepo.matches[12] = &models.Match{ID: 12, Status: models.MatchStatusFinished}

	tests := []struct {
		name     string
		req      *SubmitPredictionRequest
		wantType string
	}{
		{"negative score", &SubmitPredictionRequest{UserID: 1, MatchID: 10, HomeScore: -1, AwayScore: 0}, "VALIDATION_ERROR"},
		{"implausibly high score", &SubmitPredictionRequest{UserID: 1, MatchID: 10, HomeScore: 21, AwayScore: 0}, "VALIDATION_ERROR"},
		{"unknown match", &SubmitPredictionRequest{UserID: 1, MatchID: 99, HomeScore: 1, AwayScore: 0}, "NOT_FOUND"},
		{"live match closed", &SubmitPredictionRequest{UserID: 1, MatchID: 11, HomeScore: 1, AwayScore: 0}, "BUSINESS_ERROR"},
		{"finished match closed", &SubmitPredictionRequest{UserID: 1, MatchID: 12, HomeScore: 1, AwayScore: 0}, "BUSINESS_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitPrediction(ctx, tt.req)
			require.Error(t, err)
			serviceErr, ok := AsServiceError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, serviceErr.Type)
		})
	}
}

func TestSubmitPrediction_Duplicate(t *testing.T) {
	svc, _, matchRepo, _ := newTestPredictionService(t)
	ctx := context.Background()

	matchRepo.matches[10] = &models.Match{ID: 10, Status: models.MatchStatusUpcoming}

	_, err := svc.SubmitPrediction(ctx, &SubmitPredictionRequest{UserID: 1, MatchID: 10, HomeScore: 1, AwayScore: 0})
	require.NoError(t, err)

	_, err = svc.SubmitPrediction(ctx, &SubmitPredictionRequest{UserID: 1, MatchID: 10, HomeScore: 2, AwayScore: 0})
	require.Error(t, err)
	serviceErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", serviceErr.Type)
}

func TestSubmitPrediction_DuplicateRace(t *testing.T) {
	svc, predictionRepo, matchRepo, _ := newTestPredictionService(t)
	ctx := context.Background()

	matchRepo.matches[10] = &models.Match{ID: 10, Status: models.MatchStatusUpcoming}
	// the row appears between the existence check and the insert
	predictionRepo.createErr = errDuplicateRow

	_, err := svc.SubmitPrediction(ctx, &SubmitPredictionRequest{UserID: 1, MatchID: 10, HomeScore: 1, AwayScore: 0})
	require.Error(t, err)
	serviceErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "CONFLICT", serviceErr.Type)
}

func TestScoreMatchPredictions(t *testing.T) {
	svc, predictionRepo, matchRepo, engagement := newTestPredictionService(t)
	ctx := context.Background()

	match := &models.Match{
		ID:        10,
		Status:    models.MatchStatusFinished,
		HomeScore: intPtr(2),
		AwayScore: intPtr(1),
	}
	matchRepo.matches[10] = match

	predictionRepo.predictions = []*models.Prediction{
		{ID: 1, UserID: 1, MatchID: 10, HomeScorePred: 2, AwayScorePred: 1},               // exact
		{ID: 2, UserID: 2, MatchID: 10, HomeScorePred: 3, AwayScorePred: 0},               // outcome
		{ID: 3, UserID: 3, MatchID: 10, HomeScorePred: 0, AwayScorePred: 0},               // miss
		{ID: 4, UserID: 4, MatchID: 10, HomeScorePred: 1, AwayScorePred: 1, PointsEarned: intPtr(1)}, // already scored
	}
	predictionRepo.nextID = 4

	scored, err := svc.ScoreMatchPredictions(ctx, match)
	require.NoError(t, err)
	assert.Equal(t, 3, scored)

	assert.Equal(t, 3, *predictionRepo.predictions[0].PointsEarned)
	assert.Equal(t, 1, *predictionRepo.predictions[1].PointsEarned)
	assert.Equal(t, 0, *predictionRepo.predictions[2].PointsEarned)
	assert.Equal(t, 1, *predictionRepo.predictions[3].PointsEarned)

	// exact score feeds perfect_predictions and the streak
	stats, err := engagement.GetStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Get(models.StatPerfectPredictions))
	assert.Equal(t, 1, stats.Get(models.StatPredictionStreak))

	// a miss leaves the streak at zero
	stats, err = engagement.GetStats(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Get(models.StatPredictionStreak))
}

func TestScoreMatchPredictions_NoResult(t *testing.T) {
	svc, _, _, _ := newTestPredictionService(t)

	tests := []struct {
		name  string
		match *models.Match
	}{
		{"not finished", &models.Match{ID: 1, Status: models.MatchStatusLive, HomeScore: intPtr(1), AwayScore: intPtr(0)}},
		{"missing scores", &models.Match{ID: 2, Status: models.MatchStatusFinished}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ScoreMatchPredictions(context.Background(), tt.match)
			require.Error(t, err)
			serviceErr, ok := AsServiceError(err)
			require.True(t, ok)
			assert.Equal(t, "BUSINESS_ERROR", serviceErr.Type)
		})
	}
}
