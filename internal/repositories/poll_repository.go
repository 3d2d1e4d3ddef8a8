package repositories

import (
	"context"
	"fmt"

	"fanpulse/internal/database"
	"fanpulse/internal/models"

	"go.uber.org/zap"
)

// pollRepository implements PollRepository
type pollRepository struct {
	*BaseRepository
}

// NewPollRepository creates a new instance of PollRepository
func NewPollRepository(db *database.Manager, logger *zap.Logger) PollRepository {
	return &pollRepository{BaseRepository: NewBaseRepository(db, logger)}
}

// Create inserts the poll and its options in one transaction
func (r *pollRepository) Create(ctx context.Context, poll *models.Poll) error {
	tx, err := r.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin poll transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO polls (question, is_open, closes_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		poll.Question, poll.IsOpen, poll.ClosesAt,
	).Scan(&poll.ID, &poll.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}

	for i := range poll.Options {
		opt := &poll.Options[i]
		opt.PollID = poll.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO poll_options (poll_id, label) VALUES ($1, $2) RETURNING id`,
			poll.ID, opt.Label,
		).Scan(&opt.ID)
		if err != nil {
			return fmt.Errorf("failed to create poll option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit poll: %w", err)
	}
	return nil
}

// GetByID returns the poll with its options and vote counts, nil when absent
func (r *pollRepository) GetByID(ctx context.Context, id int64) (*models.Poll, error) {
	var poll models.Poll
	err := r.QueryRowContext(ctx,
		`SELECT id, question, is_open, closes_at, created_at FROM polls WHERE id = $1`,
		id,
	).Scan(&poll.ID, &poll.Question, &poll.IsOpen, &poll.ClosesAt, &poll.CreatedAt)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	if err := r.loadOptions(ctx, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

// List returns polls newest first, optionally only the ones still open
func (r *pollRepository) List(ctx context.Context, openOnly bool, params models.PaginationParams) (*models.PaginatedResponse[*models.Poll], error) {
	countQuery := `SELECT COUNT(*) FROM polls`
	query := `SELECT id, question, is_open, closes_at, created_at FROM polls`
	if openOnly {
		filter := ` WHERE is_open = TRUE AND (closes_at IS NULL OR closes_at > NOW())`
		countQuery += filter
		query += filter
	}

	var total int64
	if err := r.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count polls: %w", err)
	}

	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.QueryContext(ctx, query, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var polls []*models.Poll
	for rows.Next() {
		var poll models.Poll
		if err := rows.Scan(&poll.ID, &poll.Question, &poll.IsOpen, &poll.ClosesAt, &poll.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, &poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate polls: %w", err)
	}

	for _, poll := range polls {
		if err := r.loadOptions(ctx, poll); err != nil {
			return nil, err
		}
	}

	return &models.PaginatedResponse[*models.Poll]{
		Data:       polls,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

// Vote records the user's choice. The unique (poll_id, user_id) index makes a
// second vote surface as a duplicate error.
func (r *pollRepository) Vote(ctx context.Context, pollID, optionID, userID int64) error {
	if _, err := r.ExecContext(ctx,
		`INSERT INTO poll_votes (poll_id, option_id, user_id) VALUES ($1, $2, $3)`,
		pollID, optionID, userID,
	); err != nil {
		return fmt.Errorf("failed to record vote: %w", err)
	}
	return nil
}

// GetUserVote returns the option id the user picked, nil when they have not voted
func (r *pollRepository) GetUserVote(ctx context.Context, pollID, userID int64) (*int64, error) {
	var optionID int64
	err := r.QueryRowContext(ctx,
		`SELECT option_id FROM poll_votes WHERE poll_id = $1 AND user_id = $2`,
		pollID, userID,
	).Scan(&optionID)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user vote: %w", err)
	}
	return &optionID, nil
}

func (r *pollRepository) loadOptions(ctx context.Context, poll *models.Poll) error {
	rows, err := r.QueryContext(ctx,
		`SELECT o.id, o.poll_id, o.label,
		        (SELECT COUNT(*) FROM poll_votes v WHERE v.option_id = o.id) AS vote_count
		 FROM poll_options o
		 WHERE o.poll_id = $1
		 ORDER BY o.id`,
		poll.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load poll options: %w", err)
	}
	defer rows.Close()

	poll.Options = poll.Options[:0]
	for rows.Next() {
		var opt models.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Label, &opt.VoteCount); err != nil {
			return fmt.Errorf("failed to scan poll option: %w", err)
		}
		poll.Options = append(poll.Options, opt)
	}
	return rows.Err()
}
