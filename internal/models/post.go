package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MediaType represents the kind of media attached to a post
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// Post represents a creator's post
type Post struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	CreatorID uuid.UUID       `json:"creator_id" db:"creator_id"`
	Title     string          `json:"title" db:"title"`
	Content   string          `json:"content" db:"content"`
	Price     decimal.Decimal `json:"price" db:"price"`
	IsPinned  bool            `json:"is_pinned" db:"is_pinned"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// IsFree reports whether the post has no price attached
func (p *Post) IsFree() bool {
	return p.Price.IsZero()
}

// PostMedia represents a media attachment belonging to a post
type PostMedia struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PostID    uuid.UUID `json:"post_id" db:"post_id"`
	URL       string    `json:"url" db:"url"`
	MediaType MediaType `json:"media_type" db:"media_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Comment represents a comment on a post
type Comment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PostID    uuid.UUID `json:"post_id" db:"post_id"`
	AuthorID  uuid.UUID `json:"author_id" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
