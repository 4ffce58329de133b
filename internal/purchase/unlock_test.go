package purchase

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"
)

func TestResolve_FreePostAlwaysUnlocked(t *testing.T) {
	now := time.Now()

	unlock := Resolve(decimal.Zero, nil, now)
	if !unlock.Unlocked {
		t.Error("free post with no purchase should be unlocked")
	}
	if unlock.Expired {
		t.Error("free post should never be expired")
	}

	// Even a long-expired purchase does not matter when the price is zero
	old := now.Add(-30 * 24 * time.Hour)
	unlock = Resolve(decimal.Zero, &old, now)
	if !unlock.Unlocked || unlock.Expired {
		t.Error("free post should stay unlocked regardless of purchase history")
	}
}

func TestResolve_NoPurchaseIsLocked(t *testing.T) {
	unlock := Resolve(decimal.NewFromFloat(4.99), nil, time.Now())
	if unlock.Unlocked {
		t.Error("paid post with no purchase should be locked")
	}
	if unlock.Expired {
		t.Error("never-purchased post should not report expired")
	}
	if unlock.State != StateLocked {
		t.Errorf("expected state %q, got %q", StateLocked, unlock.State)
	}
}

func TestResolve_WindowBoundary(t *testing.T) {
	price := decimal.NewFromFloat(9.99)
	purchasedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		now      time.Time
		unlocked bool
		expired  bool
	}{
		{"immediately after purchase", purchasedAt.Add(time.Second), true, false},
		{"one second before expiry", purchasedAt.Add(UnlockWindow - time.Second), true, false},
		{"exactly at expiry", purchasedAt.Add(UnlockWindow), false, true},
		{"one second after expiry", purchasedAt.Add(UnlockWindow + time.Second), false, true},
		{"week after expiry", purchasedAt.Add(2 * UnlockWindow), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unlock := Resolve(price, &purchasedAt, tt.now)
			if unlock.Unlocked != tt.unlocked {
				t.Errorf("unlocked = %v, want %v", unlock.Unlocked, tt.unlocked)
			}
			if unlock.Expired != tt.expired {
				t.Errorf("expired = %v, want %v", unlock.Expired, tt.expired)
			}
		})
	}
}

func TestResolve_ReportsPurchaseTime(t *testing.T) {
	purchasedAt := time.Now().Add(-time.Hour)
	unlock := Resolve(decimal.NewFromFloat(1.50), &purchasedAt, time.Now())
	if unlock.PurchasedAt == nil || !unlock.PurchasedAt.Equal(purchasedAt) {
		t.Error("resolve should carry the purchase time through")
	}
}

// TestProperty_UnlockStates checks that every (price, purchase age) pair lands
// in exactly one of the three states and that the state is consistent with the
// window arithmetic.
func TestProperty_UnlockStates(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		now := time.Unix(rapid.Int64Range(1_600_000_000, 1_900_000_000).Draw(rt, "now"), 0)
		priceCents := rapid.Int64Range(0, 100_000).Draw(rt, "priceCents")
		price := decimal.NewFromInt(priceCents).Shift(-2)

		var purchasedAt *time.Time
		if rapid.Bool().Draw(rt, "hasPurchase") {
			age := rapid.Int64Range(0, 30*24*3600).Draw(rt, "ageSeconds")
			at := now.Add(-time.Duration(age) * time.Second)
			purchasedAt = &at
		}

		unlock := Resolve(price, purchasedAt, now)

		if unlock.Unlocked && unlock.Expired {
			rt.Fatal("a post cannot be unlocked and expired at once")
		}

		switch {
		case priceCents == 0:
			if !unlock.Unlocked {
				rt.Fatal("free post must be unlocked")
			}
		case purchasedAt == nil:
			if unlock.State != StateLocked {
				rt.Fatalf("no purchase must be locked, got %q", unlock.State)
			}
		case now.Before(purchasedAt.Add(UnlockWindow)):
			if unlock.State != StateUnlocked {
				rt.Fatalf("purchase inside window must be unlocked, got %q", unlock.State)
			}
		default:
			if unlock.State != StateExpired {
				rt.Fatalf("purchase past window must be expired, got %q", unlock.State)
			}
		}
	})
}

// TestProperty_RepurchaseResetsWindow checks that resolving against a newer
// purchase time always yields at least as much access as an older one.
func TestProperty_RepurchaseResetsWindow(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		now := time.Unix(rapid.Int64Range(1_600_000_000, 1_900_000_000).Draw(rt, "now"), 0)
		price := decimal.NewFromInt(rapid.Int64Range(1, 100_000).Draw(rt, "priceCents")).Shift(-2)

		oldAge := rapid.Int64Range(0, 30*24*3600).Draw(rt, "oldAgeSeconds")
		newAge := rapid.Int64Range(0, oldAge).Draw(rt, "newAgeSeconds")

		oldAt := now.Add(-time.Duration(oldAge) * time.Second)
		newAt := now.Add(-time.Duration(newAge) * time.Second)

		oldUnlock := Resolve(price, &oldAt, now)
		newUnlock := Resolve(price, &newAt, now)

		if oldUnlock.Unlocked && !newUnlock.Unlocked {
			rt.Fatal("a newer purchase must never grant less access than an older one")
		}
	})
}

func TestCents(t *testing.T) {
	tests := []struct {
		price string
		want  int64
	}{
		{"0", 0},
		{"0.01", 1},
		{"4.99", 499},
		{"10", 1000},
		{"19.90", 1990},
	}
	for _, tt := range tests {
		got := Cents(decimal.RequireFromString(tt.price))
		if got != tt.want {
			t.Errorf("Cents(%s) = %d, want %d", tt.price, got, tt.want)
		}
	}
}
