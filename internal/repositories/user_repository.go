package repositories

import (
	"context"
	"fmt"

	"fanpulse/internal/database"
	"fanpulse/internal/models"

	"go.uber.org/zap"
)

// userRepository implements UserRepository
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository(db, logger)}
}

// Create inserts a new account row
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, role, avatar_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.AvatarURL, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.GetLogger().Info("user created", zap.Int64("user_id", user.ID))
	return nil
}

const userColumns = `id, email, username, password_hash, role, avatar_url, is_active, last_seen_at, created_at, updated_at`

func (r *userRepository) scanUser(scan func(...interface{}) error) (*models.User, error) {
	var user models.User
	err := scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.Role,
		&user.AvatarURL, &user.IsActive, &user.LastSeenAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves an account by id, nil when absent
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := r.scanUser(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves an account by email, nil when absent
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := r.scanUser(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// Update stores profile changes
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = $2, avatar_url = $3, role = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(ctx, query,
		user.ID, user.Username, user.AvatarURL, user.Role, user.IsActive,
	).Scan(&user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// UpdateLastSeen touches the last_seen_at timestamp
func (r *userRepository) UpdateLastSeen(ctx context.Context, userID int64) error {
	if _, err := r.ExecContext(ctx, `UPDATE users SET last_seen_at = NOW() WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to update last seen: %w", err)
	}
	return nil
}
