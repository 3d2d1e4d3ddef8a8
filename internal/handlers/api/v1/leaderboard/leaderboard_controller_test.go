package leaderboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fanpulse/internal/contextutils"
	"fanpulse/internal/models"
	"fanpulse/internal/response"
	"fanpulse/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubLeaderboardService struct {
	entries   []*models.LeaderboardEntry
	lastLimit int
	err       error
}

func (s *stubLeaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	s.lastLimit = limit
	return s.entries, s.err
}

func (s *stubLeaderboardService) GetUserRank(ctx context.Context, userID int64) (*models.LeaderboardEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, e := range s.entries {
		if e.UserID == userID {
			return e, nil
		}
	}
	return nil, nil
}

func (s *stubLeaderboardService) Invalidate(ctx context.Context) {}

func newTestController(svc services.LeaderboardService) *LeaderboardController {
	logger := zap.NewNop()
	return NewLeaderboardController(svc, response.NewBuilder(response.DefaultConfig(), logger), logger)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]json.RawMessage {
	t.Helper()
	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestStandings(t *testing.T) {
	svc := &stubLeaderboardService{entries: []*models.LeaderboardEntry{
		{Rank: 1, UserID: 2, Username: "brian", TotalPoints: 6},
		{Rank: 2, UserID: 1, Username: "amina", TotalPoints: 4},
	}}
	controller := newTestController(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard", nil)
	rec := httptest.NewRecorder()
	controller.Standings(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultStandingsLimit, svc.lastLimit)

	envelope := decodeEnvelope(t, rec)
	var entries []*models.LeaderboardEntry
	require.NoError(t, json.Unmarshal(envelope["data"], &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "brian", entries[0].Username)
}

func TestStandings_LimitQuery(t *testing.T) {
	svc := &stubLeaderboardService{}
	controller := newTestController(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard?limit=10", nil)
	rec := httptest.NewRecorder()
	controller.Standings(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, svc.lastLimit)

	// out-of-range values fall back to the default
	req = httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard?limit=5000", nil)
	controller.Standings(httptest.NewRecorder(), req)
	assert.Equal(t, defaultStandingsLimit, svc.lastLimit)
}

func TestStandings_MethodNotAllowed(t *testing.T) {
	controller := newTestController(&stubLeaderboardService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leaderboard", nil)
	rec := httptest.NewRecorder()
	controller.Standings(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStandings_ServiceError(t *testing.T) {
	svc := &stubLeaderboardService{err: services.NewInternalError("failed to compute leaderboard")}
	controller := newTestController(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard", nil)
	rec := httptest.NewRecorder()
	controller.Standings(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMyRank(t *testing.T) {
	svc := &stubLeaderboardService{entries: []*models.LeaderboardEntry{
		{Rank: 1, UserID: 7, Username: "amina", TotalPoints: 9},
	}}
	controller := newTestController(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard/me", nil)
	req = req.WithContext(contextutils.WithUserID(req.Context(), 7))
	rec := httptest.NewRecorder()
	controller.MyRank(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	var entry models.LeaderboardEntry
	require.NoError(t, json.Unmarshal(envelope["data"], &entry))
	assert.Equal(t, 1, entry.Rank)
}

func TestMyRank_Unranked(t *testing.T) {
	controller := newTestController(&stubLeaderboardService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard/me", nil)
	req = req.WithContext(contextutils.WithUserID(req.Context(), 42))
	rec := httptest.NewRecorder()
	controller.MyRank(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "null", string(envelope["data"]))
}

func TestMyRank_Unauthenticated(t *testing.T) {
	controller := newTestController(&stubLeaderboardService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard/me", nil)
	rec := httptest.NewRecorder()
	controller.MyRank(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
