package content

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/onlyskins/onlyskins/internal/models"
	"github.com/onlyskins/onlyskins/internal/purchase"
)

// Service errors
var (
	ErrPostNotFound = errors.New("post not found")
	ErrUserNotFound = errors.New("user not found")
	ErrNotPostOwner = errors.New("post does not belong to the user")
)

// Service handles post creation and gated retrieval
type Service struct {
	db        *pgxpool.Pool
	purchases *purchase.Service
}

// NewService creates a new content service
func NewService(db *pgxpool.Pool, purchases *purchase.Service) *Service {
	return &Service{db: db, purchases: purchases}
}

// CreatePostRequest is the payload for creating a post
type CreatePostRequest struct {
	Title     string   `json:"title" binding:"required,min=1,max=200"`
	Content   string   `json:"content" binding:"required"`
	Price     string   `json:"price"`
	MediaURLs []string `json:"media_urls"`
}

// PostView is a post as seen by a specific viewer, with unlock state applied
type PostView struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Content     string          `json:"content"`
	Unlocked    bool            `json:"unlocked"`
	Expired     bool            `json:"expired"`
	PurchasedAt *time.Time      `json:"purchased_at,omitempty"`
	MediaURLs   []string        `json:"media_urls"`
	IsOwner     bool            `json:"is_owner"`
	IsPinned    bool            `json:"is_pinned"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Profile is a creator page: the user plus their viewer-filtered posts
type Profile struct {
	User  ProfileUser `json:"user"`
	Posts []PostView  `json:"posts"`
}

// ProfileUser is the public part of a creator's account
type ProfileUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Bio       *string   `json:"bio"`
	AvatarURL *string   `json:"avatar_url"`
	BannerURL *string   `json:"banner_url"`
}

// MediaTypeFromURL infers the media type from the URL's file extension.
// Video extensions map to video; everything else is treated as an image.
func MediaTypeFromURL(url string) models.MediaType {
	switch strings.ToLower(path.Ext(url)) {
	case ".mp4", ".mov", ".webm":
		return models.MediaTypeVideo
	default:
		return models.MediaTypeImage
	}
}

// Create inserts a post and its media attachments in one transaction
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, req *CreatePostRequest) (*models.Post, error) {
	price := decimal.Zero
	if req.Price != "" {
		parsed, err := decimal.NewFromString(req.Price)
		if err != nil || parsed.IsNegative() {
			return nil, fmt.Errorf("invalid price %q", req.Price)
		}
		price = parsed
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var post models.Post
	err = tx.QueryRow(ctx, `
		INSERT INTO posts (creator_id, title, content, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, creator_id, title, content, price, is_pinned, created_at
	`, creatorID, req.Title, req.Content, price).Scan(
		&post.ID, &post.CreatorID, &post.Title, &post.Content, &post.Price, &post.IsPinned, &post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	for _, url := range req.MediaURLs {
		_, err = tx.Exec(ctx,
			"INSERT INTO post_media (post_id, url, media_type) VALUES ($1, $2, $3)",
			post.ID, url, MediaTypeFromURL(url))
		if err != nil {
			return nil, fmt.Errorf("failed to insert post media: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &post, nil
}

type postRow struct {
	post  models.Post
	media []string
}

func (s *Service) queryPosts(ctx context.Context, where string, args ...any) ([]postRow, error) {
	rows, err := s.db.Query(ctx, fmt.Sprintf(`
		SELECT posts.id, posts.creator_id, posts.title, posts.content, posts.price,
		       posts.is_pinned, posts.created_at,
		       COALESCE(array_agg(post_media.url ORDER BY post_media.created_at)
		                FILTER (WHERE post_media.url IS NOT NULL), '{}')
		FROM posts
		LEFT JOIN post_media ON post_media.post_id = posts.id
		WHERE %s
		GROUP BY posts.id
		ORDER BY posts.is_pinned DESC, posts.created_at DESC
	`, where), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var result []postRow
	for rows.Next() {
		var r postRow
		if err := rows.Scan(&r.post.ID, &r.post.CreatorID, &r.post.Title, &r.post.Content,
			&r.post.Price, &r.post.IsPinned, &r.post.CreatedAt, &r.media); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// Dashboard returns all of a creator's own posts, ungated, pinned first
func (s *Service) Dashboard(ctx context.Context, creatorID uuid.UUID) ([]PostView, error) {
	rows, err := s.queryPosts(ctx, "posts.creator_id = $1", creatorID)
	if err != nil {
		return nil, err
	}

	views := []PostView{}
	for _, r := range rows {
		views = append(views, PostView{
			ID:        r.post.ID,
			Title:     r.post.Title,
			Price:     r.post.Price,
			Content:   r.post.Content,
			Unlocked:  true,
			MediaURLs: r.media,
			IsOwner:   true,
			IsPinned:  r.post.IsPinned,
			CreatedAt: r.post.CreatedAt,
		})
	}
	return views, nil
}

// ProfileView returns a creator's profile as seen by viewerID. Locked posts
// have their content and media withheld; the owner always sees everything.
func (s *Service) ProfileView(ctx context.Context, username string, viewerID *uuid.UUID) (*Profile, error) {
	var user ProfileUser
	err := s.db.QueryRow(ctx, `
		SELECT id, username, role, bio, avatar_url, banner_url
		FROM users WHERE LOWER(username) = LOWER($1)
	`, username).Scan(&user.ID, &user.Username, &user.Role, &user.Bio, &user.AvatarURL, &user.BannerURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	rows, err := s.queryPosts(ctx, "posts.creator_id = $1", user.ID)
	if err != nil {
		return nil, err
	}

	isOwner := viewerID != nil && *viewerID == user.ID

	var purchaseTimes map[uuid.UUID]time.Time
	if viewerID != nil && !isOwner {
		purchaseTimes, err = s.purchases.LatestPurchaseTimes(ctx, *viewerID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	views := []PostView{}
	for _, r := range rows {
		view := PostView{
			ID:        r.post.ID,
			Title:     r.post.Title,
			Price:     r.post.Price,
			IsOwner:   isOwner,
			IsPinned:  r.post.IsPinned,
			CreatedAt: r.post.CreatedAt,
		}

		if isOwner {
			view.Unlocked = true
			view.Content = r.post.Content
			view.MediaURLs = r.media
			views = append(views, view)
			continue
		}

		var purchasedAt *time.Time
		if t, ok := purchaseTimes[r.post.ID]; ok {
			purchasedAt = &t
		}
		state := purchase.Resolve(r.post.Price, purchasedAt, now)
		view.Unlocked = state.Unlocked
		view.Expired = state.Expired
		view.PurchasedAt = state.PurchasedAt
		if state.Unlocked {
			view.Content = r.post.Content
			view.MediaURLs = r.media
		} else {
			view.MediaURLs = []string{}
		}
		views = append(views, view)
	}

	return &Profile{User: user, Posts: views}, nil
}

// GetPost returns a single post
func (s *Service) GetPost(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := s.db.QueryRow(ctx, `
		SELECT id, creator_id, title, content, price, is_pinned, created_at
		FROM posts WHERE id = $1
	`, postID).Scan(&post.ID, &post.CreatorID, &post.Title, &post.Content,
		&post.Price, &post.IsPinned, &post.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to look up post: %w", err)
	}
	return &post, nil
}

// SetPinned updates a post's pinned flag after checking ownership
func (s *Service) SetPinned(ctx context.Context, userID, postID uuid.UUID, pinned bool) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.CreatorID != userID {
		return ErrNotPostOwner
	}

	_, err = s.db.Exec(ctx, "UPDATE posts SET is_pinned = $1 WHERE id = $2", pinned, postID)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// Delete removes a post after checking ownership. Media, comments and
// purchase ledger rows cascade at the schema level.
func (s *Service) Delete(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.CreatorID != userID {
		return ErrNotPostOwner
	}

	_, err = s.db.Exec(ctx, "DELETE FROM posts WHERE id = $1", postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
