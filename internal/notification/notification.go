package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onlyskins/onlyskins/internal/models"
	"github.com/onlyskins/onlyskins/internal/monitoring"
)

// Service handles the per-user notification feed
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new notification service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// List returns a user's notifications, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, type, message, metadata, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Metadata, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// UnreadCount returns the number of unread notifications for a user
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// MarkAllRead marks every notification for the user as read
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE", userID)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// Create appends a notification to a user's feed
func (s *Service) Create(ctx context.Context, userID uuid.UUID, notifType models.NotificationType, message string, metadata []byte) error {
	if metadata == nil {
		metadata = []byte("{}")
	}
	_, err := s.db.Exec(ctx,
		"INSERT INTO notifications (user_id, type, message, metadata) VALUES ($1, $2, $3, $4)",
		userID, notifType, message, metadata)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	monitoring.RecordNotification(string(notifType))
	return nil
}
