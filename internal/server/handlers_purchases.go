package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apierrors "github.com/onlyskins/onlyskins/internal/errors"
	"github.com/onlyskins/onlyskins/internal/logging"
	"github.com/onlyskins/onlyskins/internal/middleware"
	"github.com/onlyskins/onlyskins/internal/monitoring"
	"github.com/onlyskins/onlyskins/internal/payment"
	"github.com/onlyskins/onlyskins/internal/purchase"
)

// handleDirectPurchase records a pay-per-view purchase without the gateway
func (s *APIServer) handleDirectPurchase(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	var req struct {
		PostID uuid.UUID `json:"post_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	p, err := s.purchaseService.Direct(c.Request.Context(), userID, req.PostID)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrPostNotFound):
			respondError(c, apierrors.ErrPostNotFoundError)
		case errors.Is(err, purchase.ErrFreePost):
			respondError(c, apierrors.NewInvalidRequestError("Post is free and does not need purchasing"))
		case errors.Is(err, purchase.ErrAlreadyUnlocked):
			// Still unlocked from an earlier purchase; report success
			c.JSON(http.StatusOK, gin.H{"already_purchased": true})
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	monitoring.RecordPurchase("direct", p.AmountCents)
	c.JSON(http.StatusCreated, gin.H{"purchase": p})
}

// handleListPurchases returns the full purchased-post history
func (s *APIServer) handleListPurchases(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	posts, err := s.purchaseService.ListPurchased(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": posts})
}

// handleActivePurchases returns the buyer's unexpired purchases
func (s *APIServer) handleActivePurchases(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	entries, err := s.purchaseService.ListActive(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": entries})
}

// handleCreateCheckoutSession opens a Stripe checkout session for a paid post
func (s *APIServer) handleCreateCheckoutSession(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	var req struct {
		PostID uuid.UUID `json:"post_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	result, err := s.paymentService.CreateCheckoutSession(c.Request.Context(), userID, req.PostID)
	if err != nil {
		switch {
		case errors.Is(err, purchase.ErrPostNotFound):
			respondError(c, apierrors.ErrPostNotFoundError)
		case errors.Is(err, payment.ErrFreePost):
			respondError(c, apierrors.NewInvalidRequestError("Post is free and does not need purchasing"))
		case errors.Is(err, payment.ErrAlreadyPurchased):
			c.JSON(http.StatusOK, gin.H{"already_purchased": true})
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleStripeWebhook verifies and processes a gateway callback. The raw body
// is required for signature verification, so this handler bypasses binding.
func (s *APIServer) handleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		respondError(c, apierrors.NewWebhookRejectedError("Failed to read request body"))
		return
	}

	err = s.paymentService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidWebhookSignature):
			respondError(c, apierrors.NewWebhookRejectedError("Invalid webhook signature"))
		case errors.Is(err, payment.ErrMalformedEvent):
			respondError(c, apierrors.NewWebhookRejectedError("Event is missing required metadata"))
		case errors.Is(err, purchase.ErrPostNotFound):
			respondError(c, apierrors.ErrPostNotFoundError)
		default:
			requestID, _ := c.Get("request_id")
			reqIDStr, _ := requestID.(string)
			logging.LogError(err, reqIDStr, "server", "stripe_webhook")
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
