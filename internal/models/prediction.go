package models

import "time"

// Points awarded to a scored prediction
const (
	PointsExactScore     = 3
	PointsCorrectOutcome = 1
	PointsMiss           = 0
)

// MaxPredictedGoals bounds a single predicted score to a sane maximum
const MaxPredictedGoals = 20

// Prediction represents a user's guessed final score for a match.
// PointsEarned stays nil until the match is finalized and the guess is scored.
type Prediction struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	MatchID       int64     `json:"match_id" db:"match_id"`
	HomeScorePred int       `json:"home_score_prediction" db:"home_score_prediction"`
	AwayScorePred int       `json:"away_score_prediction" db:"away_score_prediction"`
	PointsEarned  *int      `json:"points_earned" db:"points_earned"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	// Joined display fields
	Username string `json:"username,omitempty" db:"-"`
	Opponent string `json:"opponent,omitempty" db:"-"`
}

// IsScored reports whether the prediction has been scored
func (p *Prediction) IsScored() bool {
	return p.PointsEarned != nil
}

// LeaderboardEntry is the per-user aggregate over all scored predictions
type LeaderboardEntry struct {
	UserID           int64  `json:"user_id"`
	Username         string `json:"username"`
	AvatarURL        *string `json:"avatar_url,omitempty"`
	Rank             int    `json:"rank"`
	TotalPoints      int    `json:"total_points"`
	TotalPredictions int    `json:"total_predictions"`
	CorrectScores    int    `json:"correct_scores"`
	CurrentStreak    int    `json:"current_streak"`
}
