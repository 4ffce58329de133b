package purchase

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnlockWindow is how long paid content stays visible after a purchase.
const UnlockWindow = 7 * 24 * time.Hour

// State represents the unlock state of a (buyer, post) pair
type State string

const (
	StateLocked   State = "locked"
	StateUnlocked State = "unlocked"
	StateExpired  State = "expired"
)

// Unlock is the computed visibility of a post for one viewer
type Unlock struct {
	State       State      `json:"state"`
	Unlocked    bool       `json:"unlocked"`
	Expired     bool       `json:"expired"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
}

// Resolve computes the unlock state for a post with the given price, given the
// viewer's most recent purchase time (nil when none exists).
//
// Free posts are always unlocked: gating is bypassed entirely for a zero
// price, regardless of any purchase history. For paid posts the window is
// half-open: content is visible strictly before purchasedAt + UnlockWindow
// and expired at or after that instant.
func Resolve(price decimal.Decimal, purchasedAt *time.Time, now time.Time) Unlock {
	if price.IsZero() {
		return Unlock{State: StateUnlocked, Unlocked: true}
	}

	if purchasedAt == nil {
		return Unlock{State: StateLocked}
	}

	if now.Before(purchasedAt.Add(UnlockWindow)) {
		return Unlock{State: StateUnlocked, Unlocked: true, PurchasedAt: purchasedAt}
	}

	return Unlock{State: StateExpired, Expired: true, PurchasedAt: purchasedAt}
}

// Cents converts a decimal dollar price to integer cents
func Cents(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}
