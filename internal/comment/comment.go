package comment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrPostNotFound = errors.New("post not found")

// Service handles post comments
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new comment service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// CommentView is a comment joined with its author's username
type CommentView struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt string    `json:"created_at"`
}

// Add attaches a comment to a post
func (s *Service) Add(ctx context.Context, postID, authorID uuid.UUID, content string) (*CommentView, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)", postID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check post: %w", err)
	}
	if !exists {
		return nil, ErrPostNotFound
	}

	var c CommentView
	err = s.db.QueryRow(ctx, `
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, author_id,
		          (SELECT username FROM users WHERE id = author_id),
		          content, created_at::text
	`, postID, authorID, content).Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}
	return &c, nil
}

// List returns a post's comments, oldest first
func (s *Service) List(ctx context.Context, postID uuid.UUID) ([]CommentView, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)", postID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check post: %w", err)
	}
	if !exists {
		return nil, ErrPostNotFound
	}

	rows, err := s.db.Query(ctx, `
		SELECT comments.id, comments.post_id, comments.author_id, users.username,
		       comments.content, comments.created_at::text
		FROM comments
		JOIN users ON comments.author_id = users.id
		WHERE comments.post_id = $1
		ORDER BY comments.created_at ASC
	`, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []CommentView{}, nil
		}
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []CommentView{}
	for rows.Next() {
		var c CommentView
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Author, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
