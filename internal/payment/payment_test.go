package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stripe/stripe-go/v76"

	"github.com/onlyskins/onlyskins/internal/config"
	"github.com/onlyskins/onlyskins/internal/purchase"
)

func testPaymentService() *Service {
	// nil pool: these tests must never reach the database
	return NewService(purchase.NewService(nil), &config.StripeConfig{
		SecretKey:     "sk_test_fake",
		WebhookSecret: "whsec_test_fake",
	}, "http://localhost:3000")
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	svc := testPaymentService()

	payload := []byte(`{"type":"checkout.session.completed"}`)
	err := svc.HandleWebhook(context.Background(), payload, "t=1,v1=bogus")
	if !errors.Is(err, ErrInvalidWebhookSignature) {
		t.Errorf("expected ErrInvalidWebhookSignature, got %v", err)
	}
}

func TestHandleWebhook_EmptySignature(t *testing.T) {
	svc := testPaymentService()

	err := svc.HandleWebhook(context.Background(), []byte(`{}`), "")
	if !errors.Is(err, ErrInvalidWebhookSignature) {
		t.Errorf("expected ErrInvalidWebhookSignature, got %v", err)
	}
}

func completedEvent(object map[string]interface{}) *stripe.Event {
	return &stripe.Event{
		ID:   "evt_test_1",
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Object: object},
	}
}

func TestCheckoutCompleted_MissingMetadata(t *testing.T) {
	svc := testPaymentService()

	// No metadata at all. The handler must reject before any ledger write;
	// the nil pool panics if it tries.
	err := svc.handleCheckoutCompleted(context.Background(), completedEvent(map[string]interface{}{
		"amount_total": float64(499),
	}))
	if !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("expected ErrMalformedEvent, got %v", err)
	}
}

func TestCheckoutCompleted_PartialMetadata(t *testing.T) {
	svc := testPaymentService()

	err := svc.handleCheckoutCompleted(context.Background(), completedEvent(map[string]interface{}{
		"metadata": map[string]interface{}{
			"userId": "9b6c1a52-3c44-4bb0-9f0e-8f6dbb0f3a11",
		},
	}))
	if !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("expected ErrMalformedEvent for missing postId, got %v", err)
	}
}

func TestCheckoutCompleted_MissingAmount(t *testing.T) {
	svc := testPaymentService()

	// Valid metadata but no amount_total. Recording a zero-cent purchase
	// would corrupt the ledger, so the event is rejected as malformed.
	err := svc.handleCheckoutCompleted(context.Background(), completedEvent(map[string]interface{}{
		"metadata": map[string]interface{}{
			"userId": "9b6c1a52-3c44-4bb0-9f0e-8f6dbb0f3a11",
			"postId": "2f1d9a40-57e8-4f13-8d21-cc4a90e2b7d4",
		},
	}))
	if !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("expected ErrMalformedEvent for missing amount_total, got %v", err)
	}
}

func TestCheckoutCompleted_GarbageIDs(t *testing.T) {
	svc := testPaymentService()

	err := svc.handleCheckoutCompleted(context.Background(), completedEvent(map[string]interface{}{
		"metadata": map[string]interface{}{
			"userId": "not-a-uuid",
			"postId": "also-not-a-uuid",
		},
	}))
	if !errors.Is(err, ErrMalformedEvent) {
		t.Errorf("expected ErrMalformedEvent for unparseable ids, got %v", err)
	}
}
