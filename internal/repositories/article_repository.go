package repositories

import (
	"context"
	"fmt"
	"time"

	"fanpulse/internal/database"
	"fanpulse/internal/models"

	"go.uber.org/zap"
)

// articleRepository implements ArticleRepository
type articleRepository struct {
	*BaseRepository
}

// NewArticleRepository creates a new instance of ArticleRepository
func NewArticleRepository(db *database.Manager, logger *zap.Logger) ArticleRepository {
	return &articleRepository{BaseRepository: NewBaseRepository(db, logger)}
}

// articleSelect carries the joined author name, reaction and comment counts,
// and whether the viewing user ($N = viewer id, possibly NULL) has reacted.
const articleSelect = `
	SELECT a.id, a.author_id, a.title, a.summary, a.body, a.category,
	       a.cover_image_url, a.status, a.published_at, a.created_at, a.updated_at,
	       u.username,
	       (SELECT COUNT(*) FROM article_reactions r WHERE r.article_id = a.id) AS reaction_count,
	       (SELECT COUNT(*) FROM comments c WHERE c.article_id = a.id) AS comment_count,
	       EXISTS (
	           SELECT 1 FROM article_reactions r
	           WHERE r.article_id = a.id AND r.user_id = $1
	       ) AS user_reacted
	FROM articles a
	INNER JOIN users u ON u.id = a.author_id`

func scanArticle(scanner interface{ Scan(...interface{}) error }) (*models.Article, error) {
	var a models.Article
	err := scanner.Scan(
		&a.ID, &a.AuthorID, &a.Title, &a.Summary, &a.Body, &a.Category,
		&a.CoverImageURL, &a.Status, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
		&a.AuthorUsername, &a.ReactionCount, &a.CommentCount, &a.UserReacted,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a published article
func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (author_id, title, summary, body, category, status, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, published_at, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		article.AuthorID, article.Title, article.Summary, article.Body,
		article.Category, article.Status,
	).Scan(&article.ID, &article.PublishedAt, &article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// GetByID returns the article with viewer-aware reaction state, nil when absent
func (r *articleRepository) GetByID(ctx context.Context, id int64, userID *int64) (*models.Article, error) {
	query := articleSelect + ` WHERE a.id = $2`

	article, err := scanArticle(r.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return article, nil
}

// List returns published articles newest first, optionally filtered by category
func (r *articleRepository) List(ctx context.Context, category string, params models.PaginationParams, userID *int64) (*models.PaginatedResponse[*models.Article], error) {
	countQuery := `SELECT COUNT(*) FROM articles a WHERE a.status = 'published'`
	query := articleSelect + ` WHERE a.status = 'published'`
	countArgs := []interface{}{}
	args := []interface{}{userID}

	if category != "" {
		countQuery += ` AND a.category = $1`
		countArgs = append(countArgs, category)
		query += fmt.Sprintf(" AND a.category = $%d", len(args)+1)
		args = append(args, category)
	}

	var total int64
	if err := r.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	query += fmt.Sprintf(" ORDER BY a.published_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	var articles []*models.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate articles: %w", err)
	}

	return &models.PaginatedResponse[*models.Article]{
		Data:       articles,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}

// SetCoverImage records the uploaded cover image URL
func (r *articleRepository) SetCoverImage(ctx context.Context, articleID int64, url string) error {
	if _, err := r.ExecContext(ctx,
		`UPDATE articles SET cover_image_url = $2, updated_at = NOW() WHERE id = $1`,
		articleID, url,
	); err != nil {
		return fmt.Errorf("failed to set cover image: %w", err)
	}
	return nil
}

// ArchiveOlderThan flips published articles older than the cutoff to archived
// and returns how many rows changed.
func (r *articleRepository) ArchiveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.ExecContext(ctx,
		`UPDATE articles SET status = 'archived', updated_at = NOW()
		 WHERE status = 'published' AND published_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to archive articles: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read archive count: %w", err)
	}
	return affected, nil
}

// ToggleReaction adds the user's reaction if absent, removes it if present,
// and reports the resulting state.
func (r *articleRepository) ToggleReaction(ctx context.Context, articleID, userID int64) (bool, error) {
	result, err := r.ExecContext(ctx,
		`DELETE FROM article_reactions WHERE article_id = $1 AND user_id = $2`,
		articleID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to toggle reaction: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		return false, nil
	}

	if _, err := r.ExecContext(ctx,
		`INSERT INTO article_reactions (article_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (article_id, user_id) DO NOTHING`,
		articleID, userID,
	); err != nil {
		return false, fmt.Errorf("failed to add reaction: %w", err)
	}
	return true, nil
}

// CreateComment inserts a comment
func (r *articleRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (article_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		comment.ArticleID, comment.UserID, comment.Content,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListComments returns an article's comments oldest first with author details
func (r *articleRepository) ListComments(ctx context.Context, articleID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Comment], error) {
	var total int64
	if err := r.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE article_id = $1`, articleID,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	query := `
		SELECT c.id, c.article_id, c.user_id, c.content, c.created_at, c.updated_at,
		       u.username, u.avatar_url
		FROM comments c
		INNER JOIN users u ON u.id = c.user_id
		WHERE c.article_id = $1
		ORDER BY c.created_at ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.QueryContext(ctx, query, articleID, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.ArticleID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
			&c.Username, &c.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}

	return &models.PaginatedResponse[*models.Comment]{
		Data:       comments,
		Pagination: models.NewPaginationMeta(params, total),
	}, nil
}
