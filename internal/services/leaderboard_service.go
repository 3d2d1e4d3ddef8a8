package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"fanpulse/internal/cache"
	"fanpulse/internal/models"
	"fanpulse/internal/repositories"

	"go.uber.org/zap"
)

const (
	leaderboardCacheKey = "leaderboard:standings"
	leaderboardCacheTTL = 2 * time.Minute
)

// ComputeLeaderboard reduces all scored predictions into ranked per-user
// totals. The input must be ordered chronologically within each user so the
// trailing-streak calculation sees predictions in play order; unscored rows
// are ignored entirely.
//
// Sorting is total_points descending with an explicit tie-break chain:
// correct_scores descending, then total_predictions ascending (fewer attempts
// for the same points ranks higher), then user_id ascending for determinism.
func ComputeLeaderboard(predictions []*models.Prediction) []*models.LeaderboardEntry {
	byUser := make(map[int64]*models.LeaderboardEntry)
	var order []int64

	for _, p := range predictions {
		if !p.IsScored() {
			continue
		}
		entry, ok := byUser[p.UserID]
		if !ok {
			entry = &models.LeaderboardEntry{UserID: p.UserID, Username: p.Username}
			byUser[p.UserID] = entry
			order = append(order, p.UserID)
		}

		points := *p.PointsEarned
		entry.TotalPoints += points
		entry.TotalPredictions++
		if points == models.PointsExactScore {
			entry.CorrectScores++
		}
		if points > 0 {
			entry.CurrentStreak++
		} else {
			entry.CurrentStreak = 0
		}
	}

	entries := make([]*models.LeaderboardEntry, 0, len(order))
	for _, id := range order {
		entries = append(entries, byUser[id])
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.CorrectScores != b.CorrectScores {
			return a.CorrectScores > b.CorrectScores
		}
		if a.TotalPredictions != b.TotalPredictions {
			return a.TotalPredictions < b.TotalPredictions
		}
		return a.UserID < b.UserID
	})

	for i, entry := range entries {
		entry.Rank = i + 1
	}
	return entries
}

// leaderboardService implements LeaderboardService. Standings are recomputed
// from the full prediction set on fetch, not incrementally maintained; the
// cache bounds how stale a consumer can observe them.
type leaderboardService struct {
	predictionRepo repositories.PredictionRepository
	cache          cache.Cache
	logger         *zap.Logger
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(predictionRepo repositories.PredictionRepository, c cache.Cache, logger *zap.Logger) LeaderboardService {
	return &leaderboardService{
		predictionRepo: predictionRepo,
		cache:          c,
		logger:         logger,
	}
}

// GetLeaderboard returns the ranked standings, capped at limit when limit > 0
func (s *leaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	entries, err := s.standings(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// GetUserRank returns the 1-based rank of the user, nil when the user has no
// scored predictions.
func (s *leaderboardService) GetUserRank(ctx context.Context, userID int64) (*models.LeaderboardEntry, error) {
	entries, err := s.standings(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.UserID == userID {
			return entry, nil
		}
	}
	return nil, nil
}

// Invalidate drops the cached standings; called after match finalization
func (s *leaderboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, leaderboardCacheKey); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", zap.Error(err))
	}
}

func (s *leaderboardService) standings(ctx context.Context) ([]*models.LeaderboardEntry, error) {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, leaderboardCacheKey); ok {
			if entries, ok := decodeCachedEntries(raw); ok {
				return entries, nil
			}
		}
	}

	predictions, err := s.predictionRepo.GetAllScored(ctx)
	if err != nil {
		s.logger.Error("failed to load scored predictions", zap.Error(err))
		return nil, NewInternalError("failed to compute leaderboard")
	}

	entries := ComputeLeaderboard(predictions)

	if s.cache != nil {
		if err := s.cache.Set(ctx, leaderboardCacheKey, entries, leaderboardCacheTTL); err != nil {
			s.logger.Warn("failed to cache leaderboard", zap.Error(err))
		}
	}
	return entries, nil
}

// decodeCachedEntries tolerates both in-process values and values that went
// through JSON serialization in Redis.
func decodeCachedEntries(raw interface{}) ([]*models.LeaderboardEntry, bool) {
	switch v := raw.(type) {
	case []*models.LeaderboardEntry:
		return v, true
	case string:
		var entries []*models.LeaderboardEntry
		if err := json.Unmarshal([]byte(v), &entries); err == nil {
			return entries, true
		}
	case []byte:
		var entries []*models.LeaderboardEntry
		if err := json.Unmarshal(v, &entries); err == nil {
			return entries, true
		}
	}
	return nil, false
}
