package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/onlyskins/onlyskins/internal/errors"
	"github.com/onlyskins/onlyskins/internal/middleware"
	"github.com/onlyskins/onlyskins/internal/social"
)

// handleToggleFollow follows or unfollows the named creator
func (s *APIServer) handleToggleFollow(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	creatorID, err := s.socialService.ResolveUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondSocialError(c, err)
		return
	}

	result, err := s.socialService.Toggle(c.Request.Context(), userID, creatorID)
	if err != nil {
		respondSocialError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleUnfollow removes the follow edge if present
func (s *APIServer) handleUnfollow(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	creatorID, err := s.socialService.ResolveUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondSocialError(c, err)
		return
	}

	if err := s.socialService.Unfollow(c.Request.Context(), userID, creatorID); err != nil {
		respondSocialError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": false})
}

// handleFollowStatus reports whether the caller follows the named creator
func (s *APIServer) handleFollowStatus(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	creatorID, err := s.socialService.ResolveUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondSocialError(c, err)
		return
	}

	following, err := s.socialService.IsFollowing(c.Request.Context(), userID, creatorID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	followers, followingCount, err := s.socialService.Counts(c.Request.Context(), creatorID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"following":       following,
		"followers":       followers,
		"following_count": followingCount,
	})
}

// handleFollowingList returns the creators the caller follows
func (s *APIServer) handleFollowingList(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	creators, err := s.socialService.Following(c.Request.Context(), userID)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": creators})
}

// handleSearchUsers matches usernames against a free-text query
func (s *APIServer) handleSearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondError(c, apierrors.NewInvalidRequestError("Missing search query"))
		return
	}

	users, err := s.socialService.SearchUsers(c.Request.Context(), query)
	if err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func respondSocialError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, social.ErrUserNotFound):
		respondError(c, apierrors.ErrUserNotFoundError)
	case errors.Is(err, social.ErrSelfFollow):
		respondError(c, apierrors.NewInvalidRequestError("You cannot follow yourself"))
	default:
		respondError(c, apierrors.ErrInternalServerError)
	}
}
