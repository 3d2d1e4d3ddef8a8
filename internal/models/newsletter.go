package models

import "time"

// NewsletterSubscription represents one email on the club newsletter list
type NewsletterSubscription struct {
	ID           int64      `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	ConfirmToken string     `json:"-" db:"confirm_token"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// IsConfirmed reports whether the double opt-in completed
func (s *NewsletterSubscription) IsConfirmed() bool {
	return s.ConfirmedAt != nil
}
