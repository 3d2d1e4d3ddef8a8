package repositories

import (
	"context"
	"fmt"

	"fanpulse/internal/database"
	"fanpulse/internal/models"

	"go.uber.org/zap"
)

// predictionRepository implements PredictionRepository
type predictionRepository struct {
	*BaseRepository
}

// NewPredictionRepository creates a new instance of PredictionRepository
func NewPredictionRepository(db *database.Manager, logger *zap.Logger) PredictionRepository {
	return &predictionRepository{BaseRepository: NewBaseRepository(db, logger)}
}

// Create inserts a prediction row. The unique (user_id, match_id) index
// backs the one-prediction-per-match rule.
func (r *predictionRepository) Create(ctx context.Context, prediction *models.Prediction) error {
	query := `
		INSERT INTO match_predictions (user_id, match_id, home_score_prediction, away_score_prediction)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		prediction.UserID, prediction.MatchID,
		prediction.HomeScorePred, prediction.AwayScorePred,
	).Scan(&prediction.ID, &prediction.CreatedAt, &prediction.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create prediction: %w", err)
	}
	return nil
}

// GetByUserAndMatch returns the user's prediction for a match, nil when none
func (r *predictionRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int64) (*models.Prediction, error) {
	query := `
		SELECT id, user_id, match_id, home_score_prediction, away_score_prediction,
		       points_earned, created_at, updated_at
		FROM match_predictions
		WHERE user_id = $1 AND match_id = $2`

	var p models.Prediction
	err := r.QueryRowContext(ctx, query, userID, matchID).Scan(
		&p.ID, &p.UserID, &p.MatchID, &p.HomeScorePred, &p.AwayScorePred,
		&p.PointsEarned, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return &p, nil
}

// GetByUser lists the user's predictions joined with the opposing side
func (r *predictionRepository) GetByUser(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Prediction], error) {
	var total int64
	if err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM match_predictions WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count predictions: %w", err)
	}

	query := `
		SELECT p.id, p.user_id, p.match_id, p.home_score_prediction, p.away_score_prediction,
		       p.points_earned, p.created_at, p.updated_at, m.opponent
		FROM match_predictions p
		INNER JOIN matches m ON m.id = p.match_id
		WHERE p.user_id = $1
		ORDER BY m.kickoff_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.QueryContext(ctx, query, userID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.MatchID, &p.HomeScorePred, &p.AwayScorePred,
			&p.PointsEarned, &p.CreatedAt, &p.UpdatedAt, &p.Opponent,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate predictions: %w", err)
	}

	return &models.PaginatedResponse[*models.Prediction]{
		Data:       predictions,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

// GetUnscoredByMatch returns the match's predictions still awaiting points
func (r *predictionRepository) GetUnscoredByMatch(ctx context.Context, matchID int64) ([]*models.Prediction, error) {
	query := `
		SELECT id, user_id, match_id, home_score_prediction, away_score_prediction,
		       points_earned, created_at, updated_at
		FROM match_predictions
		WHERE match_id = $1 AND points_earned IS NULL
		ORDER BY id`

	rows, err := r.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unscored predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.MatchID, &p.HomeScorePred, &p.AwayScorePred,
			&p.PointsEarned, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, &p)
	}
	return predictions, rows.Err()
}

// GetAllScored returns every scored prediction with its username, ordered by
// user then match kickoff so per-user sequences are chronological for the
// streak computation.
func (r *predictionRepository) GetAllScored(ctx context.Context) ([]*models.Prediction, error) {
	query := `
		SELECT p.id, p.user_id, p.match_id, p.home_score_prediction, p.away_score_prediction,
		       p.points_earned, p.created_at, p.updated_at, u.username
		FROM match_predictions p
		INNER JOIN users u ON u.id = p.user_id
		INNER JOIN matches m ON m.id = p.match_id
		WHERE p.points_earned IS NOT NULL
		ORDER BY p.user_id, m.kickoff_at, p.id`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load scored predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.MatchID, &p.HomeScorePred, &p.AwayScorePred,
			&p.PointsEarned, &p.CreatedAt, &p.UpdatedAt, &p.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, &p)
	}
	return predictions, rows.Err()
}

// SetPoints writes the computed points for one prediction
func (r *predictionRepository) SetPoints(ctx context.Context, predictionID int64, points int) error {
	result, err := r.ExecContext(ctx,
		`UPDATE match_predictions SET points_earned = $2, updated_at = NOW() WHERE id = $1`,
		predictionID, points,
	)
	if err != nil {
		return fmt.Errorf("failed to set prediction points: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		r.GetLogger().Warn("set points touched no rows", zap.Int64("prediction_id", predictionID))
	}
	return nil
}
