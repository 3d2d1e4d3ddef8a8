package services

import (
	"context"
	"sync"
	"time"

	"fanpulse/internal/events"
	"fanpulse/internal/models"

	"go.uber.org/zap"
)

// newBadgeNotifyTTL is how long the "most recently unlocked" badge stays
// exposed for UI notification before it self-clears.
const newBadgeNotifyTTL = 5 * time.Second

// visitDateLayout formats the last-visit calendar day
const visitDateLayout = "2006-01-02"

// StatStorage is the persistence port for per-user counters and unlocked
// badges. The evaluator itself is a pure function of (stats, catalog); this
// interface is the only place that touches a storage backend.
type StatStorage interface {
	GetStats(ctx context.Context, userID int64) (*models.UserStats, error)
	SetStats(ctx context.Context, stats *models.UserStats) error
	GetBadges(ctx context.Context, userID int64) ([]models.UnlockedBadge, error)
	SetBadges(ctx context.Context, userID int64, badges []models.UnlockedBadge) error
	Clear(ctx context.Context, userID int64) error
}

// StatUpdateResult is returned by every mutating engagement operation
type StatUpdateResult struct {
	Stats          *models.UserStats      `json:"stats"`
	NewlyUnlocked  []models.UnlockedBadge `json:"newly_unlocked,omitempty"`
	UnlockedBadges []models.UnlockedBadge `json:"unlocked_badges"`
}

// EvaluateBadges compares stats against the catalog, in catalog order, and
// returns every badge whose threshold is newly met. Already-unlocked ids are
// skipped, so re-evaluating the same stats yields nothing new.
func EvaluateBadges(stats *models.UserStats, unlocked []models.UnlockedBadge, now time.Time) []models.UnlockedBadge {
	have := make(map[string]bool, len(unlocked))
	for _, b := range unlocked {
		have[b.ID] = true
	}

	var newly []models.UnlockedBadge
	for _, badge := range badgeCatalog {
		if have[badge.ID] {
			continue
		}
		if stats.Get(badge.Condition.StatKey) >= badge.Condition.Threshold {
			newly = append(newly, models.UnlockedBadge{Badge: badge, UnlockedAt: now})
		}
	}
	return newly
}

// BadgeProgressFor returns min(100, 100*value/threshold) for progress-bar
// display, independent of unlocked status.
func BadgeProgressFor(badge models.Badge, stats *models.UserStats) int {
	if badge.Condition.Threshold <= 0 {
		return 100
	}
	progress := 100 * stats.Get(badge.Condition.StatKey) / badge.Condition.Threshold
	if progress > 100 {
		progress = 100
	}
	return progress
}

// engagementService implements EngagementService on top of a StatStorage port
type engagementService struct {
	storage StatStorage
	events  events.EventBus
	logger  *zap.Logger

	// nowFn is swapped in tests to pin the clock; notifyTTL is shrunk there
	// to exercise the notification expiry without waiting out the real window
	nowFn     func() time.Time
	notifyTTL time.Duration

	// newBadge holds the single most recently unlocked badge per user for UI
	// notification; entries self-clear after newBadgeNotifyTTL.
	mu       sync.Mutex
	newBadge map[int64]models.UnlockedBadge
}

// NewEngagementService creates the engagement service
func NewEngagementService(storage StatStorage, bus events.EventBus, logger *zap.Logger) EngagementService {
	return &engagementService{
		storage:   storage,
		events:    bus,
		logger:    logger,
		nowFn:     time.Now,
		notifyTTL: newBadgeNotifyTTL,
		newBadge:  make(map[int64]models.UnlockedBadge),
	}
}

// loadStats reads the user's record, falling back to all-zero defaults when
// the record is missing or unreadable. Storage trouble must never surface as
// an error to the caller here.
func (s *engagementService) loadStats(ctx context.Context, userID int64) *models.UserStats {
	stats, err := s.storage.GetStats(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load user stats, using defaults",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return models.NewUserStats(userID)
	}
	if stats == nil {
		return models.NewUserStats(userID)
	}
	return stats
}

// IncrementStat adds amount to the named counter, persists the record, and
// evaluates badges against the just-written value before returning.
func (s *engagementService) IncrementStat(ctx context.Context, userID int64, key string, amount int) (*StatUpdateResult, error) {
	if !models.ValidStatKey(key) {
		return nil, NewValidationError("unknown stat key", nil)
	}
	if amount <= 0 {
		amount = 1
	}

	stats := s.loadStats(ctx, userID)
	stats.Set(key, stats.Get(key)+amount)
	return s.persistAndEvaluate(ctx, stats)
}

// TrackVisit runs the once-per-day visit bookkeeping: a visit on the day
// after the previous one extends visit_streak, any other gap resets it to 1.
func (s *engagementService) TrackVisit(ctx context.Context, userID int64) (*StatUpdateResult, error) {
	now := s.nowFn()
	today := now.Format(visitDateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(visitDateLayout)

	stats := s.loadStats(ctx, userID)
	if stats.LastVisit == today {
		unlocked, _ := s.storage.GetBadges(ctx, userID)
		return &StatUpdateResult{Stats: stats, UnlockedBadges: unlocked}, nil
	}

	if stats.LastVisit == yesterday {
		stats.Set(models.StatVisitStreak, stats.Get(models.StatVisitStreak)+1)
	} else {
		stats.Set(models.StatVisitStreak, 1)
	}
	stats.LastVisit = today

	return s.persistAndEvaluate(ctx, stats)
}

// RecordPredictionOutcome folds one scored prediction into the user's
// counters: exact scores bump perfect_predictions, any points extend
// prediction_streak, a miss resets the streak to zero.
func (s *engagementService) RecordPredictionOutcome(ctx context.Context, userID int64, points int) (*StatUpdateResult, error) {
	stats := s.loadStats(ctx, userID)
	if points == models.PointsExactScore {
		stats.Set(models.StatPerfectPredictions, stats.Get(models.StatPerfectPredictions)+1)
	}
	if points > 0 {
		stats.Set(models.StatPredictionStreak, stats.Get(models.StatPredictionStreak)+1)
	} else {
		stats.Set(models.StatPredictionStreak, 0)
	}
	return s.persistAndEvaluate(ctx, stats)
}

// persistAndEvaluate writes the record and runs the badge evaluator against
// the new values, appending any unlock to the persisted set in catalog order.
func (s *engagementService) persistAndEvaluate(ctx context.Context, stats *models.UserStats) (*StatUpdateResult, error) {
	now := s.nowFn()
	stats.UpdatedAt = now

	if err := s.storage.SetStats(ctx, stats); err != nil {
		return nil, NewInternalError("failed to persist user stats")
	}

	unlocked, err := s.storage.GetBadges(ctx, stats.UserID)
	if err != nil {
		s.logger.Warn("failed to load unlocked badges, evaluating against empty set",
			zap.Int64("user_id", stats.UserID),
			zap.Error(err),
		)
		unlocked = nil
	}

	newly := EvaluateBadges(stats, unlocked, now)
	if len(newly) > 0 {
		unlocked = append(unlocked, newly...)
		if err := s.storage.SetBadges(ctx, stats.UserID, unlocked); err != nil {
			return nil, NewInternalError("failed to persist unlocked badges")
		}

		// Only the last badge processed remains the "new" notification
		// target when several unlock in the same pass.
		s.setNewBadge(stats.UserID, newly[len(newly)-1])

		for _, b := range newly {
			s.logger.Info("badge unlocked",
				zap.Int64("user_id", stats.UserID),
				zap.String("badge_id", b.ID),
			)
			s.publishUnlock(ctx, stats.UserID, b)
		}
	}

	return &StatUpdateResult{
		Stats:          stats,
		NewlyUnlocked:  newly,
		UnlockedBadges: unlocked,
	}, nil
}

func (s *engagementService) publishUnlock(ctx context.Context, userID int64, badge models.UnlockedBadge) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events.NewBadgeUnlockedEvent(userID, badge.ID, badge.Name)); err != nil {
		s.logger.Warn("failed to publish badge unlock event", zap.Error(err))
	}
}

// setNewBadge records the notification target and arms its self-clear timer
func (s *engagementService) setNewBadge(userID int64, badge models.UnlockedBadge) {
	s.mu.Lock()
	s.newBadge[userID] = badge
	s.mu.Unlock()

	time.AfterFunc(s.notifyTTL, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if current, ok := s.newBadge[userID]; ok && current.ID == badge.ID {
			delete(s.newBadge, userID)
		}
	})
}

// NewBadge returns the most recently unlocked badge for the user, or nil once
// the notification window has passed.
func (s *engagementService) NewBadge(userID int64) *models.UnlockedBadge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if badge, ok := s.newBadge[userID]; ok {
		return &badge
	}
	return nil
}

// GetStats returns the user's counter record, zero-valued when absent
func (s *engagementService) GetStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	return s.loadStats(ctx, userID), nil
}

// GetBadges returns the user's unlocked badges in unlock order
func (s *engagementService) GetBadges(ctx context.Context, userID int64) ([]models.UnlockedBadge, error) {
	unlocked, err := s.storage.GetBadges(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load unlocked badges",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, nil
	}
	return unlocked, nil
}

// GetBadgeProgress returns progress toward every catalog badge
func (s *engagementService) GetBadgeProgress(ctx context.Context, userID int64) ([]models.BadgeProgress, error) {
	stats := s.loadStats(ctx, userID)
	unlocked, _ := s.storage.GetBadges(ctx, userID)

	have := make(map[string]bool, len(unlocked))
	for _, b := range unlocked {
		have[b.ID] = true
	}

	progress := make([]models.BadgeProgress, 0, len(badgeCatalog))
	for _, badge := range badgeCatalog {
		progress = append(progress, models.BadgeProgress{
			Badge:    badge,
			Progress: BadgeProgressFor(badge, stats),
			Unlocked: have[badge.ID],
		})
	}
	return progress, nil
}
