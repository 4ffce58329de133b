package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationType represents the kind of event a notification records
type NotificationType string

const (
	NotificationFollow NotificationType = "follow"
	NotificationUnlock NotificationType = "unlock"
	NotificationTip    NotificationType = "tip"
)

// Notification represents an append-only feed entry for one recipient
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Message   string           `json:"message" db:"message"`
	Metadata  json.RawMessage  `json:"metadata" db:"metadata"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// Follow represents a directed follow edge
type Follow struct {
	FollowerID uuid.UUID `json:"follower_id" db:"follower_id"`
	CreatorID  uuid.UUID `json:"creator_id" db:"creator_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
