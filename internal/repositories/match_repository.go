package repositories

import (
	"context"
	"fmt"

	"fanpulse/internal/database"
	"fanpulse/internal/models"

	"go.uber.org/zap"
)

// matchRepository implements MatchRepository
type matchRepository struct {
	*BaseRepository
}

// NewMatchRepository creates a new instance of MatchRepository
func NewMatchRepository(db *database.Manager, logger *zap.Logger) MatchRepository {
	return &matchRepository{BaseRepository: NewBaseRepository(db, logger)}
}

const matchColumns = `id, competition, opponent, is_home, venue, kickoff_at, home_score, away_score, status, created_at, updated_at`

// Create inserts a fixture
func (r *matchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (competition, opponent, is_home, venue, kickoff_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		match.Competition, match.Opponent, match.IsHome, match.Venue, match.KickoffAt, match.Status,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	r.GetLogger().Info("match created",
		zap.Int64("match_id", match.ID),
		zap.String("opponent", match.Opponent),
	)
	return nil
}

func (r *matchRepository) scanMatch(scan func(...interface{}) error) (*models.Match, error) {
	var m models.Match
	err := scan(
		&m.ID, &m.Competition, &m.Opponent, &m.IsHome, &m.Venue, &m.KickoffAt,
		&m.HomeScore, &m.AwayScore, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetByID retrieves a match, nil when absent
func (r *matchRepository) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	row := r.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	match, err := r.scanMatch(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to get match by id: %w", err)
	}
	return match, nil
}

// Update stores score and status changes
func (r *matchRepository) Update(ctx context.Context, match *models.Match) error {
	query := `
		UPDATE matches
		SET competition = $2, opponent = $3, is_home = $4, venue = $5, kickoff_at = $6,
		    home_score = $7, away_score = $8, status = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(ctx, query,
		match.ID, match.Competition, match.Opponent, match.IsHome, match.Venue,
		match.KickoffAt, match.HomeScore, match.AwayScore, match.Status,
	).Scan(&match.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	return nil
}

// List returns fixtures, optionally filtered by status. Upcoming fixtures
// sort soonest first; everything else newest kickoff first.
func (r *matchRepository) List(ctx context.Context, status string, params models.PaginationParams) (*models.PaginatedResponse[*models.Match], error) {
	where := ""
	args := []interface{}{}
	if status != "" {
		where = "WHERE status = $1"
		args = append(args, status)
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM matches %s", where)
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}

	order := "kickoff_at DESC"
	if status == models.MatchStatusUpcoming {
		order = "kickoff_at ASC"
	}
	query := fmt.Sprintf(
		"SELECT %s FROM matches %s ORDER BY %s LIMIT $%d OFFSET $%d",
		matchColumns, where, order, len(args)+1, len(args)+2,
	)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		match, err := r.scanMatch(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matches: %w", err)
	}

	return &models.PaginatedResponse[*models.Match]{
		Data:       matches,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}
