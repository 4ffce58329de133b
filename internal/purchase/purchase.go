package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/onlyskins/onlyskins/internal/models"
)

// Service errors
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrFreePost         = errors.New("post is free and cannot be purchased")
	ErrAlreadyUnlocked  = errors.New("post already purchased and still unlocked")
	ErrDuplicateEvent   = errors.New("gateway event already processed")
)

// Service handles the pay-per-view ledger
type Service struct {
	db *pgxpool.Pool
}

// NewService creates a new purchase service
func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// PostInfo is the subset of a post the ledger needs
type PostInfo struct {
	ID        uuid.UUID
	CreatorID uuid.UUID
	Title     string
	Price     decimal.Decimal
}

// GetPostInfo looks up a post's price and owner
func (s *Service) GetPostInfo(ctx context.Context, postID uuid.UUID) (*PostInfo, error) {
	var info PostInfo
	err := s.db.QueryRow(ctx,
		"SELECT id, creator_id, title, price FROM posts WHERE id = $1", postID).Scan(
		&info.ID, &info.CreatorID, &info.Title, &info.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to look up post: %w", err)
	}
	return &info, nil
}

// ActivePurchase returns the buyer's most recent still-valid purchase for the
// post, or nil when none exists.
func (s *Service) ActivePurchase(ctx context.Context, buyerID, postID uuid.UUID) (*models.Purchase, error) {
	var p models.Purchase
	err := s.db.QueryRow(ctx, `
		SELECT id, buyer_id, post_id, amount_cents, purchase_date, expires_at, stripe_event_id
		FROM purchases
		WHERE buyer_id = $1 AND post_id = $2 AND expires_at > NOW()
		ORDER BY purchase_date DESC
		LIMIT 1
	`, buyerID, postID).Scan(
		&p.ID, &p.BuyerID, &p.PostID, &p.AmountCents, &p.PurchaseDate, &p.ExpiresAt, &p.StripeEventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up purchase: %w", err)
	}
	return &p, nil
}

// Direct records an immediate purchase without going through the payment
// gateway. The ledger insert and the creator's unlock notification share one
// transaction.
func (s *Service) Direct(ctx context.Context, buyerID, postID uuid.UUID) (*models.Purchase, error) {
	post, err := s.GetPostInfo(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Price.IsZero() {
		return nil, ErrFreePost
	}

	active, err := s.ActivePurchase(ctx, buyerID, postID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrAlreadyUnlocked
	}

	return s.record(ctx, buyerID, post, Cents(post.Price), nil)
}

// RecordConfirmed records a purchase confirmed by the payment gateway. The
// gateway event ID is stored under a unique index so a redelivered event
// inserts nothing; ErrDuplicateEvent is returned in that case.
func (s *Service) RecordConfirmed(ctx context.Context, buyerID, postID uuid.UUID, amountCents int64, eventID string) (*models.Purchase, error) {
	post, err := s.GetPostInfo(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.record(ctx, buyerID, post, amountCents, &eventID)
}

func (s *Service) record(ctx context.Context, buyerID uuid.UUID, post *PostInfo, amountCents int64, eventID *string) (*models.Purchase, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var p models.Purchase
	err = tx.QueryRow(ctx, `
		INSERT INTO purchases (buyer_id, post_id, amount_cents, purchase_date, expires_at, stripe_event_id)
		VALUES ($1, $2, $3, NOW(), NOW() + make_interval(secs => $4), $5)
		ON CONFLICT (stripe_event_id) WHERE stripe_event_id IS NOT NULL DO NOTHING
		RETURNING id, buyer_id, post_id, amount_cents, purchase_date, expires_at, stripe_event_id
	`, buyerID, post.ID, amountCents, UnlockWindow.Seconds(), eventID).Scan(
		&p.ID, &p.BuyerID, &p.PostID, &p.AmountCents, &p.PurchaseDate, &p.ExpiresAt, &p.StripeEventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict on the event id: a duplicate gateway delivery
			return nil, ErrDuplicateEvent
		}
		return nil, fmt.Errorf("failed to insert purchase: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO notifications (user_id, type, message, metadata)
		VALUES ($1, $2, $3, jsonb_build_object('buyer_id', $4::text, 'post_id', $5::text))
	`, post.CreatorID, models.NotificationUnlock, "Your post was unlocked.",
		buyerID.String(), post.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to insert notification: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &p, nil
}

// PurchasedPost is a purchased post row for the "My Purchases" listing
type PurchasedPost struct {
	ID      uuid.UUID       `json:"id"`
	Title   string          `json:"title"`
	Content string          `json:"content"`
	Price   decimal.Decimal `json:"price"`
	Creator string          `json:"creator"`
}

// ListPurchased returns the full purchased-post list for a buyer, newest first
func (s *Service) ListPurchased(ctx context.Context, buyerID uuid.UUID) ([]PurchasedPost, error) {
	rows, err := s.db.Query(ctx, `
		SELECT posts.id, posts.title, posts.content, posts.price, users.username
		FROM purchases
		JOIN posts ON purchases.post_id = posts.id
		JOIN users ON posts.creator_id = users.id
		WHERE purchases.buyer_id = $1
		ORDER BY purchases.purchase_date DESC
	`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchased posts: %w", err)
	}
	defer rows.Close()

	posts := []PurchasedPost{}
	for rows.Next() {
		var p PurchasedPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Price, &p.Creator); err != nil {
			return nil, fmt.Errorf("failed to scan purchased post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ActivePurchaseEntry pairs a post with its purchase time
type ActivePurchaseEntry struct {
	PostID      uuid.UUID `json:"postId"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// ListActive returns the buyer's unexpired purchases, one entry per post
func (s *Service) ListActive(ctx context.Context, buyerID uuid.UUID) ([]ActivePurchaseEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT ON (post_id) post_id, purchase_date
		FROM purchases
		WHERE buyer_id = $1 AND expires_at > NOW()
		ORDER BY post_id, purchase_date DESC
	`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active purchases: %w", err)
	}
	defer rows.Close()

	entries := []ActivePurchaseEntry{}
	for rows.Next() {
		var e ActivePurchaseEntry
		if err := rows.Scan(&e.PostID, &e.PurchasedAt); err != nil {
			return nil, fmt.Errorf("failed to scan active purchase: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LatestPurchaseTimes returns the most recent purchase time per post for the
// buyer, expired or not, for unlock-state computation on listings.
func (s *Service) LatestPurchaseTimes(ctx context.Context, buyerID uuid.UUID) (map[uuid.UUID]time.Time, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT ON (post_id) post_id, purchase_date
		FROM purchases
		WHERE buyer_id = $1
		ORDER BY post_id, purchase_date DESC
	`, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase times: %w", err)
	}
	defer rows.Close()

	times := make(map[uuid.UUID]time.Time)
	for rows.Next() {
		var postID uuid.UUID
		var purchasedAt time.Time
		if err := rows.Scan(&postID, &purchasedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purchase time: %w", err)
		}
		times[postID] = purchasedAt
	}
	return times, rows.Err()
}
