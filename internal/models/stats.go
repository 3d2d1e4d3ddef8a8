package models

import "time"

// Stat keys tracked per user. Every counter is monotonically non-decreasing
// except visit_streak and prediction_streak, which reset when a run breaks.
const (
	StatReactions          = "reactions"
	StatComments           = "comments"
	StatPredictions        = "predictions"
	StatPerfectPredictions = "perfect_predictions"
	StatPredictionStreak   = "prediction_streak"
	StatQuizzes            = "quizzes"
	StatComparisons        = "comparisons"
	StatVisitStreak        = "visit_streak"
	StatDreamTeams         = "dream_teams"
)

// StatKeys lists every known stat key
var StatKeys = []string{
	StatReactions,
	StatComments,
	StatPredictions,
	StatPerfectPredictions,
	StatPredictionStreak,
	StatQuizzes,
	StatComparisons,
	StatVisitStreak,
	StatDreamTeams,
}

// ValidStatKey reports whether key is a known stat key
func ValidStatKey(key string) bool {
	for _, k := range StatKeys {
		if k == key {
			return true
		}
	}
	return false
}

// UserStats is one counter record per user. LastVisit holds the last calendar
// day the user was seen, formatted as 2006-01-02; it updates at most once per day.
type UserStats struct {
	UserID    int64          `json:"user_id"`
	Counters  map[string]int `json:"counters"`
	LastVisit string         `json:"last_visit"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewUserStats returns an all-zero stats record for a user
func NewUserStats(userID int64) *UserStats {
	counters := make(map[string]int, len(StatKeys))
	for _, k := range StatKeys {
		counters[k] = 0
	}
	return &UserStats{UserID: userID, Counters: counters}
}

// Get returns the counter value for key, zero when absent
func (s *UserStats) Get(key string) int {
	if s == nil || s.Counters == nil {
		return 0
	}
	return s.Counters[key]
}

// Set stores value under key, allocating the counter map if needed
func (s *UserStats) Set(key string, value int) {
	if s.Counters == nil {
		s.Counters = make(map[string]int, len(StatKeys))
	}
	s.Counters[key] = value
}

// Clone returns a deep copy so evaluation never mutates a caller's record
func (s *UserStats) Clone() *UserStats {
	c := &UserStats{UserID: s.UserID, LastVisit: s.LastVisit, UpdatedAt: s.UpdatedAt}
	c.Counters = make(map[string]int, len(s.Counters))
	for k, v := range s.Counters {
		c.Counters[k] = v
	}
	return c
}
