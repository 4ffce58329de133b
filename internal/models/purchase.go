package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase represents a pay-per-view ledger entry. Rows are append-only: a
// re-purchase after expiry inserts a new row rather than updating the old one.
type Purchase struct {
	ID            uuid.UUID `json:"id" db:"id"`
	BuyerID       uuid.UUID `json:"buyer_id" db:"buyer_id"`
	PostID        uuid.UUID `json:"post_id" db:"post_id"`
	AmountCents   int64     `json:"amount_cents" db:"amount_cents"`
	PurchaseDate  time.Time `json:"purchase_date" db:"purchase_date"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
	StripeEventID *string   `json:"-" db:"stripe_event_id"`
}

// Tip represents a one-off tip from a user to a creator
type Tip struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	SenderID   uuid.UUID       `json:"sender_id" db:"sender_id"`
	ReceiverID uuid.UUID       `json:"receiver_id" db:"receiver_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
