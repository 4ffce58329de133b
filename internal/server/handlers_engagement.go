package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/onlyskins/onlyskins/internal/comment"
	apierrors "github.com/onlyskins/onlyskins/internal/errors"
	"github.com/onlyskins/onlyskins/internal/middleware"
	"github.com/onlyskins/onlyskins/internal/tip"
)

// handleListNotifications returns the caller's notification feed
func (s *APIServer) handleListNotifications(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	notifications, err := s.notifService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	unread, err := s.notifService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "unread": unread})
}

// handleMarkNotificationsRead marks the caller's whole feed as read
func (s *APIServer) handleMarkNotificationsRead(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	if err := s.notifService.MarkAllRead(c.Request.Context(), userID); err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked read"})
}

// handleListComments returns a post's comments, oldest first
func (s *APIServer) handleListComments(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("postID"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid post id"))
		return
	}

	comments, err := s.commentService.List(c.Request.Context(), postID)
	if err != nil {
		if errors.Is(err, comment.ErrPostNotFound) {
			respondError(c, apierrors.ErrPostNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// handleAddComment attaches a comment to a post
func (s *APIServer) handleAddComment(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	postID, err := uuid.Parse(c.Param("postID"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid post id"))
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	created, err := s.commentService.Add(c.Request.Context(), postID, userID, req.Content)
	if err != nil {
		if errors.Is(err, comment.ErrPostNotFound) {
			respondError(c, apierrors.ErrPostNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": created})
}

// handleSendTip records a tip to the named user
func (s *APIServer) handleSendTip(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	receiverID, err := s.socialService.ResolveUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondSocialError(c, err)
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	sent, err := s.tipService.Send(c.Request.Context(), userID, receiverID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, tip.ErrUserNotFound):
			respondError(c, apierrors.ErrUserNotFoundError)
		case errors.Is(err, tip.ErrSelfTip):
			respondError(c, apierrors.NewInvalidRequestError("You cannot tip yourself"))
		case errors.Is(err, tip.ErrInvalidAmount):
			respondError(c, apierrors.NewValidationError("Tip amount must be positive"))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tip": sent})
}

// handleReceivedTips lists the tips the caller has received
func (s *APIServer) handleReceivedTips(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	tips, err := s.tipService.Received(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tips": tips})
}
