package models

import "time"

// Match statuses
const (
	MatchStatusUpcoming  = "upcoming"
	MatchStatusLive      = "live"
	MatchStatusFinished  = "finished"
	MatchStatusPostponed = "postponed"
)

// Match represents one fixture of the club
type Match struct {
	ID          int64     `json:"id" db:"id"`
	Competition string    `json:"competition" db:"competition"`
	Opponent    string    `json:"opponent" db:"opponent"`
	IsHome      bool      `json:"is_home" db:"is_home"`
	Venue       string    `json:"venue" db:"venue"`
	KickoffAt   time.Time `json:"kickoff_at" db:"kickoff_at"`
	HomeScore   *int      `json:"home_score,omitempty" db:"home_score"`
	AwayScore   *int      `json:"away_score,omitempty" db:"away_score"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// IsUpcoming reports whether predictions are still accepted for the match
func (m *Match) IsUpcoming() bool {
	return m.Status == MatchStatusUpcoming
}

// IsFinished reports whether the match has a final result
func (m *Match) IsFinished() bool {
	return m.Status == MatchStatusFinished
}

// ValidMatchStatus reports whether s is one of the known match statuses
func ValidMatchStatus(s string) bool {
	switch s {
	case MatchStatusUpcoming, MatchStatusLive, MatchStatusFinished, MatchStatusPostponed:
		return true
	}
	return false
}
