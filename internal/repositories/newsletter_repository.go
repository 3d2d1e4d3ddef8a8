package repositories

import (
	"context"
	"fmt"

	"fanpulse/internal/database"
	"fanpulse/internal/models"

	"go.uber.org/zap"
)

// newsletterRepository implements NewsletterRepository
type newsletterRepository struct {
	*BaseRepository
}

// NewNewsletterRepository creates a new instance of NewsletterRepository
func NewNewsletterRepository(db *database.Manager, logger *zap.Logger) NewsletterRepository {
	return &newsletterRepository{BaseRepository: NewBaseRepository(db, logger)}
}

// Create inserts a pending subscription. The unique email index surfaces
// repeat signups as duplicate errors.
func (r *newsletterRepository) Create(ctx context.Context, sub *models.NewsletterSubscription) error {
	query := `
		INSERT INTO newsletter_subscriptions (email, confirm_token)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.QueryRowContext(ctx, query, sub.Email, sub.ConfirmToken).
		Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// ConfirmByToken marks the matching pending subscription confirmed and
// reports whether a row matched.
func (r *newsletterRepository) ConfirmByToken(ctx context.Context, token string) (bool, error) {
	result, err := r.ExecContext(ctx,
		`UPDATE newsletter_subscriptions
		 SET confirmed_at = NOW()
		 WHERE confirm_token = $1 AND confirmed_at IS NULL`,
		token,
	)
	if err != nil {
		return false, fmt.Errorf("failed to confirm subscription: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read confirm count: %w", err)
	}
	return affected > 0, nil
}

// DeleteByEmail removes the subscription; unknown emails are a no-op
func (r *newsletterRepository) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.ExecContext(ctx,
		`DELETE FROM newsletter_subscriptions WHERE email = $1`, email,
	); err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}
