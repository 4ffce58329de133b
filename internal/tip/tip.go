package tip

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/onlyskins/onlyskins/internal/models"
	"github.com/onlyskins/onlyskins/internal/monitoring"
)

// Service errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrSelfTip       = errors.New("users cannot tip themselves")
	ErrInvalidAmount = errors.New("tip amount must be positive")
)

// Service records tips between users
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new tip service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// Send records a tip and notifies the receiver in one transaction
func (s *Service) Send(ctx context.Context, senderID, receiverID uuid.UUID, amount decimal.Decimal) (*models.Tip, error) {
	if senderID == receiverID {
		return nil, ErrSelfTip
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var senderName string
	err := s.db.QueryRow(ctx, "SELECT username FROM users WHERE id = $1", senderID).Scan(&senderName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up sender: %w", err)
	}

	var exists bool
	err = s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)", receiverID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up receiver: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var t models.Tip
	err = tx.QueryRow(ctx, `
		INSERT INTO tips (sender_id, receiver_id, amount)
		VALUES ($1, $2, $3)
		RETURNING id, sender_id, receiver_id, amount, created_at
	`, senderID, receiverID, amount).Scan(&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tip: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO notifications (user_id, type, message, metadata)
		VALUES ($1, $2, $3, jsonb_build_object('sender_id', $4::text, 'amount', $5::text))
	`, receiverID, models.NotificationTip,
		fmt.Sprintf("%s sent you a $%s tip.", senderName, amount.StringFixed(2)),
		senderID.String(), amount.StringFixed(2))
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	monitoring.RecordTip()
	return &t, nil
}

// Received lists the tips a user has received, newest first
func (s *Service) Received(ctx context.Context, receiverID uuid.UUID) ([]models.Tip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, sender_id, receiver_id, amount, created_at
		FROM tips
		WHERE receiver_id = $1
		ORDER BY created_at DESC
	`, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tips: %w", err)
	}
	defer rows.Close()

	tips := []models.Tip{}
	for rows.Next() {
		var t models.Tip
		if err := rows.Scan(&t.ID, &t.SenderID, &t.ReceiverID, &t.Amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tip: %w", err)
		}
		tips = append(tips, t)
	}
	return tips, rows.Err()
}
