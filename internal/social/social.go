package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onlyskins/onlyskins/internal/models"
	"github.com/onlyskins/onlyskins/internal/monitoring"
)

// Service errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrSelfFollow   = errors.New("users cannot follow themselves")
)

// Service handles the follow graph
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new social service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// ToggleResult reports the state after a follow toggle
type ToggleResult struct {
	Following bool `json:"following"`
	Followers int  `json:"followers"`
}

func (s *Service) lookupUser(ctx context.Context, userID uuid.UUID) (string, error) {
	var username string
	err := s.db.QueryRow(ctx, "SELECT username FROM users WHERE id = $1", userID).Scan(&username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	return username, nil
}

// ResolveUsername maps a username to its user ID, case-insensitively
func (s *Service) ResolveUsername(ctx context.Context, username string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx,
		"SELECT id FROM users WHERE LOWER(username) = LOWER($1)", username).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrUserNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return id, nil
}

// Toggle flips the follow edge from followerID to creatorID. A new follow
// also writes a notification to the creator in the same transaction.
func (s *Service) Toggle(ctx context.Context, followerID, creatorID uuid.UUID) (*ToggleResult, error) {
	if followerID == creatorID {
		return nil, ErrSelfFollow
	}
	if _, err := s.lookupUser(ctx, creatorID); err != nil {
		return nil, err
	}
	followerName, err := s.lookupUser(ctx, followerID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Delete first; zero rows affected means we are creating the edge.
	tag, err := tx.Exec(ctx,
		"DELETE FROM follows WHERE follower_id = $1 AND creator_id = $2", followerID, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete follow: %w", err)
	}

	following := tag.RowsAffected() == 0
	if following {
		_, err = tx.Exec(ctx,
			"INSERT INTO follows (follower_id, creator_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			followerID, creatorID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert follow: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO notifications (user_id, type, message, metadata)
			VALUES ($1, $2, $3, jsonb_build_object('follower_id', $4::text))
		`, creatorID, models.NotificationFollow,
			fmt.Sprintf("%s started following you.", followerName), followerID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to insert notification: %w", err)
		}
	}

	var followers int
	err = tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM follows WHERE creator_id = $1", creatorID).Scan(&followers)
	if err != nil {
		return nil, fmt.Errorf("failed to count followers: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if following {
		monitoring.RecordFollow("follow")
	} else {
		monitoring.RecordFollow("unfollow")
	}

	return &ToggleResult{Following: following, Followers: followers}, nil
}

// Unfollow removes the follow edge if present
func (s *Service) Unfollow(ctx context.Context, followerID, creatorID uuid.UUID) error {
	if _, err := s.lookupUser(ctx, creatorID); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		"DELETE FROM follows WHERE follower_id = $1 AND creator_id = $2", followerID, creatorID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	if tag.RowsAffected() > 0 {
		monitoring.RecordFollow("unfollow")
	}
	return nil
}

// IsFollowing reports whether the follow edge exists
func (s *Service) IsFollowing(ctx context.Context, followerID, creatorID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND creator_id = $2)",
		followerID, creatorID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

// Counts returns follower and following totals for a user
func (s *Service) Counts(ctx context.Context, userID uuid.UUID) (followers, following int, err error) {
	err = s.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE creator_id = $1),
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1)
	`, userID).Scan(&followers, &following)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count follows: %w", err)
	}
	return followers, following, nil
}

// FollowedCreator is one row of a user's following list
type FollowedCreator struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
}

// UserResult is one row of a username search
type UserResult struct {
	ID       uuid.UUID       `json:"id"`
	Username string          `json:"username"`
	Bio      *string         `json:"bio"`
	Role     models.UserRole `json:"role"`
}

// SearchUsers finds users whose username contains the query, case-insensitive
func (s *Service) SearchUsers(ctx context.Context, query string) ([]UserResult, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, username, bio, role
		FROM users
		WHERE username ILIKE '%' || $1 || '%'
		ORDER BY username
		LIMIT 50
	`, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := []UserResult{}
	for rows.Next() {
		var u UserResult
		if err := rows.Scan(&u.ID, &u.Username, &u.Bio, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Following lists the creators a user follows, most recent first
func (s *Service) Following(ctx context.Context, followerID uuid.UUID) ([]FollowedCreator, error) {
	rows, err := s.db.Query(ctx, `
		SELECT users.id, users.username, users.avatar_url
		FROM follows
		JOIN users ON follows.creator_id = users.id
		WHERE follows.follower_id = $1
		ORDER BY follows.created_at DESC
	`, followerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query following: %w", err)
	}
	defer rows.Close()

	creators := []FollowedCreator{}
	for rows.Next() {
		var c FollowedCreator
		if err := rows.Scan(&c.ID, &c.Username, &c.AvatarURL); err != nil {
			return nil, fmt.Errorf("failed to scan creator: %w", err)
		}
		creators = append(creators, c)
	}
	return creators, rows.Err()
}
