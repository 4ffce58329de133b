package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/onlyskins/onlyskins/internal/config"
	"github.com/onlyskins/onlyskins/internal/logging"
	"github.com/onlyskins/onlyskins/internal/monitoring"
	"github.com/onlyskins/onlyskins/internal/purchase"
)

// Service errors
var (
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent          = errors.New("webhook event is missing required metadata")
	ErrFreePost                = errors.New("post is free and cannot be purchased")
	ErrAlreadyPurchased        = errors.New("post already purchased and still unlocked")
)

// Service drives Stripe checkout and webhook confirmation
type Service struct {
	purchases *purchase.Service
	cfg       *config.StripeConfig
	appURL    string
	logger    zerolog.Logger
}

// NewService creates a new payment service and sets the Stripe API key
func NewService(purchases *purchase.Service, cfg *config.StripeConfig, appURL string) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{
		purchases: purchases,
		cfg:       cfg,
		appURL:    appURL,
		logger:    logging.NewLogger("payment"),
	}
}

// CheckoutResult carries the session handle back to the client
type CheckoutResult struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreateCheckoutSession opens a Stripe checkout session for a paid post.
// Free posts are rejected, and an active purchase short-circuits without
// touching Stripe.
func (s *Service) CreateCheckoutSession(ctx context.Context, buyerID, postID uuid.UUID) (*CheckoutResult, error) {
	post, err := s.purchases.GetPostInfo(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Price.IsZero() {
		return nil, ErrFreePost
	}

	active, err := s.purchases.ActivePurchase(ctx, buyerID, postID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, ErrAlreadyPurchased
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Unlock: %s", post.Title)),
					},
					UnitAmount: stripe.Int64(purchase.Cents(post.Price)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/purchase/success?session_id={CHECKOUT_SESSION_ID}", s.appURL)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/purchase/cancel", s.appURL)),
	}
	params.AddMetadata("userId", buyerID.String())
	params.AddMetadata("postId", postID.String())

	sess, err := session.New(params)
	if err != nil {
		monitoring.RecordCheckoutSession("error")
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	monitoring.RecordCheckoutSession("created")
	s.logger.Info().
		Str("session_id", sess.ID).
		Str("buyer_id", buyerID.String()).
		Str("post_id", postID.String()).
		Msg("Checkout session created")

	return &CheckoutResult{SessionID: sess.ID, CheckoutURL: sess.URL}, nil
}

// HandleWebhook verifies and dispatches one raw webhook delivery
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		monitoring.RecordWebhookEvent("unknown", "rejected")
		return ErrInvalidWebhookSignature
	}

	logging.LogWebhookEvent(event.ID, string(event.Type), "received")

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, &event)
	default:
		monitoring.RecordWebhookEvent(string(event.Type), "ignored")
		return nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	userIDRaw := event.GetObjectValue("metadata", "userId")
	postIDRaw := event.GetObjectValue("metadata", "postId")
	if userIDRaw == "" || postIDRaw == "" {
		monitoring.RecordWebhookEvent(string(event.Type), "malformed")
		return ErrMalformedEvent
	}

	buyerID, err := uuid.Parse(userIDRaw)
	if err != nil {
		monitoring.RecordWebhookEvent(string(event.Type), "malformed")
		return ErrMalformedEvent
	}
	postID, err := uuid.Parse(postIDRaw)
	if err != nil {
		monitoring.RecordWebhookEvent(string(event.Type), "malformed")
		return ErrMalformedEvent
	}

	amountCents, err := strconv.ParseInt(event.GetObjectValue("amount_total"), 10, 64)
	if err != nil {
		monitoring.RecordWebhookEvent(string(event.Type), "malformed")
		return ErrMalformedEvent
	}

	p, err := s.purchases.RecordConfirmed(ctx, buyerID, postID, amountCents, event.ID)
	if err != nil {
		if errors.Is(err, purchase.ErrDuplicateEvent) {
			s.logger.Info().Str("event_id", event.ID).Msg("Duplicate webhook event ignored")
			monitoring.RecordWebhookEvent(string(event.Type), "duplicate")
			return nil
		}
		monitoring.RecordWebhookEvent(string(event.Type), "error")
		return fmt.Errorf("failed to record confirmed purchase: %w", err)
	}

	monitoring.RecordWebhookEvent(string(event.Type), "processed")
	monitoring.RecordPurchase("stripe", amountCents)
	logging.LogPurchase(event.ID, buyerID.String(), postID.String(), "stripe", amountCents)
	s.logger.Info().
		Str("purchase_id", p.ID.String()).
		Str("event_id", event.ID).
		Msg("Purchase confirmed from webhook")

	return nil
}
