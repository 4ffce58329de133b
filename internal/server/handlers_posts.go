package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/onlyskins/onlyskins/internal/content"
	apierrors "github.com/onlyskins/onlyskins/internal/errors"
	"github.com/onlyskins/onlyskins/internal/middleware"
	"github.com/onlyskins/onlyskins/internal/monitoring"
)

// handleCreatePost creates a post with optional media attachments
func (s *APIServer) handleCreatePost(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	var req content.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	post, err := s.contentService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError(err.Error()))
		return
	}

	monitoring.RecordPostCreated()
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// handleDashboard lists the creator's own posts, ungated
func (s *APIServer) handleDashboard(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	posts, err := s.contentService.Dashboard(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// handleProfile returns a creator page with unlock state for the viewer
func (s *APIServer) handleProfile(c *gin.Context) {
	username := c.Param("username")

	var viewerID *uuid.UUID
	if id := middleware.GetUserIDFromContext(c); id != uuid.Nil {
		viewerID = &id
	}

	profile, err := s.contentService.ProfileView(c.Request.Context(), username, viewerID)
	if err != nil {
		if errors.Is(err, content.ErrUserNotFound) {
			respondError(c, apierrors.ErrUserNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, profile)
}

// handlePinPost toggles a post's pinned flag
func (s *APIServer) handlePinPost(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid post id"))
		return
	}

	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	err = s.contentService.SetPinned(c.Request.Context(), userID, postID, req.Pinned)
	if err != nil {
		respondContentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pinned": req.Pinned})
}

// handleDeletePost removes a post and everything attached to it
func (s *APIServer) handleDeletePost(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid post id"))
		return
	}

	err = s.contentService.Delete(c.Request.Context(), userID, postID)
	if err != nil {
		respondContentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

func respondContentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, content.ErrPostNotFound):
		respondError(c, apierrors.ErrPostNotFoundError)
	case errors.Is(err, content.ErrNotPostOwner):
		respondError(c, apierrors.ErrNotPostOwnerError)
	default:
		respondError(c, apierrors.ErrInternalServerError)
	}
}
