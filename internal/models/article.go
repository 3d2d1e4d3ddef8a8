package models

import "time"

// Article statuses
const (
	ArticleStatusPublished = "published"
	ArticleStatusArchived  = "archived"
)

// Article represents a club news article
type Article struct {
	ID            int64     `json:"id" db:"id"`
	AuthorID      int64     `json:"author_id" db:"author_id"`
	Title         string    `json:"title" db:"title"`
	Summary       string    `json:"summary" db:"summary"`
	Body          string    `json:"body" db:"body"`
	Category      string    `json:"category" db:"category"`
	CoverImageURL *string   `json:"cover_image_url,omitempty" db:"cover_image_url"`
	Status        string    `json:"status" db:"status"`
	PublishedAt   time.Time `json:"published_at" db:"published_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields
	AuthorUsername string `json:"author_username,omitempty" db:"-"`
	ReactionCount  int    `json:"reaction_count" db:"-"`
	CommentCount   int    `json:"comment_count" db:"-"`
	UserReacted    bool   `json:"user_reacted" db:"-"`
}

// Comment represents a supporter comment on an article
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	ArticleID int64     `json:"article_id" db:"article_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Username  string  `json:"username,omitempty" db:"-"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}
