package models

import "time"

// Poll represents a fan poll with a fixed option list
type Poll struct {
	ID        int64     `json:"id" db:"id"`
	Question  string    `json:"question" db:"question"`
	IsOpen    bool      `json:"is_open" db:"is_open"`
	ClosesAt  *time.Time `json:"closes_at,omitempty" db:"closes_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Options []PollOption `json:"options" db:"-"`
}

// PollOption is one selectable answer with its running vote count
type PollOption struct {
	ID        int64  `json:"id" db:"id"`
	PollID    int64  `json:"poll_id" db:"poll_id"`
	Label     string `json:"label" db:"label"`
	VoteCount int    `json:"vote_count" db:"-"`
}

// PollResults is the aggregated outcome of a poll
type PollResults struct {
	Poll       Poll `json:"poll"`
	TotalVotes int  `json:"total_votes"`
	UserVote   *int64 `json:"user_vote,omitempty"` // option id the requesting user picked
}
