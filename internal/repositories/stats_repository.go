package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fanpulse/internal/database"
	"fanpulse/internal/models"

	"go.uber.org/zap"
)

// statsRepository implements StatsRepository on two JSONB-backed tables:
// user_stats holds one counters document per user, user_badges one ordered
// unlocked-badge document per user. Whole-document upserts keep writes to a
// single round trip and preserve badge insertion order without a join table.
type statsRepository struct {
	*BaseRepository
}

// NewStatsRepository creates a new instance of StatsRepository
func NewStatsRepository(db *database.Manager, logger *zap.Logger) StatsRepository {
	return &statsRepository{BaseRepository: NewBaseRepository(db, logger)}
}

// encodeCounters serializes the per-user counter map for the JSONB column
func encodeCounters(counters map[string]int) ([]byte, error) {
	raw, err := json.Marshal(counters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stat counters: %w", err)
	}
	return raw, nil
}

// decodeCounters restores a counter map from its JSONB document
func decodeCounters(raw []byte) (map[string]int, error) {
	counters := make(map[string]int, len(models.StatKeys))
	if err := json.Unmarshal(raw, &counters); err != nil {
		return nil, fmt.Errorf("failed to decode stat counters: %w", err)
	}
	return counters, nil
}

// encodeBadges serializes the ordered unlocked-badge list for the JSONB column
func encodeBadges(badges []models.UnlockedBadge) ([]byte, error) {
	raw, err := json.Marshal(badges)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user badges: %w", err)
	}
	return raw, nil
}

// decodeBadges restores the unlocked-badge list, preserving unlock order
func decodeBadges(raw []byte) ([]models.UnlockedBadge, error) {
	var badges []models.UnlockedBadge
	if err := json.Unmarshal(raw, &badges); err != nil {
		return nil, fmt.Errorf("failed to decode user badges: %w", err)
	}
	return badges, nil
}

// GetStats returns the user's counter document, nil when none exists yet
func (r *statsRepository) GetStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	query := `SELECT counters, last_visit, updated_at FROM user_stats WHERE user_id = $1`

	var (
		raw       []byte
		lastVisit string
		updatedAt time.Time
	)
	err := r.QueryRowContext(ctx, query, userID).Scan(&raw, &lastVisit, &updatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	counters, err := decodeCounters(raw)
	if err != nil {
		return nil, err
	}

	stats := models.NewUserStats(userID)
	stats.LastVisit = lastVisit
	stats.UpdatedAt = updatedAt
	for k, v := range counters {
		stats.Set(k, v)
	}
	return stats, nil
}

// SetStats upserts the user's counter document
func (r *statsRepository) SetStats(ctx context.Context, stats *models.UserStats) error {
	raw, err := encodeCounters(stats.Counters)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_stats (user_id, counters, last_visit, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET counters = EXCLUDED.counters,
		    last_visit = EXCLUDED.last_visit,
		    updated_at = NOW()`

	if _, err := r.ExecContext(ctx, query, stats.UserID, raw, stats.LastVisit); err != nil {
		return fmt.Errorf("failed to upsert user stats: %w", err)
	}
	return nil
}

// GetBadges returns the user's unlocked badges in unlock order
func (r *statsRepository) GetBadges(ctx context.Context, userID int64) ([]models.UnlockedBadge, error) {
	query := `SELECT badges FROM user_badges WHERE user_id = $1`

	var raw []byte
	err := r.QueryRowContext(ctx, query, userID).Scan(&raw)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}

	return decodeBadges(raw)
}

// SetBadges replaces the user's unlocked badge document
func (r *statsRepository) SetBadges(ctx context.Context, userID int64, badges []models.UnlockedBadge) error {
	raw, err := encodeBadges(badges)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_badges (user_id, badges, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET badges = EXCLUDED.badges, updated_at = NOW()`

	if _, err := r.ExecContext(ctx, query, userID, raw); err != nil {
		return fmt.Errorf("failed to upsert user badges: %w", err)
	}
	return nil
}

// Clear drops the user's stats and badges (account deletion cleanup)
func (r *statsRepository) Clear(ctx context.Context, userID int64) error {
	if _, err := r.ExecContext(ctx, `DELETE FROM user_stats WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear user stats: %w", err)
	}
	if _, err := r.ExecContext(ctx, `DELETE FROM user_badges WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear user badges: %w", err)
	}
	return nil
}
