package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/onlyskins/onlyskins/internal/auth"
	apierrors "github.com/onlyskins/onlyskins/internal/errors"
	"github.com/onlyskins/onlyskins/internal/middleware"
	"github.com/onlyskins/onlyskins/internal/monitoring"
)

// handleSignup handles user registration
func (s *APIServer) handleSignup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserAlreadyExists):
			respondError(c, apierrors.NewInvalidRequestError("Username or email already registered"))
		case errors.Is(err, auth.ErrInvalidRole):
			respondError(c, apierrors.NewValidationError("Role must be creator or subscriber"))
		default:
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	monitoring.RecordSignup(string(resp.User.Role))
	c.JSON(http.StatusCreated, resp)
}

// handleLogin handles user login
func (s *APIServer) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	resp, err := s.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(c, apierrors.ErrInvalidCredentialsError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// handleForgotPassword issues a reset token. The response is the same whether
// or not the email is registered so the endpoint cannot be used to enumerate
// accounts.
func (s *APIServer) handleForgotPassword(c *gin.Context) {
	var req auth.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	err := s.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, auth.ErrEmailNotFound) {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If that email is registered, a reset link has been sent"})
}

// handleResetPassword consumes a reset token and sets a new password
func (s *APIServer) handleResetPassword(c *gin.Context) {
	var req auth.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	err := s.authService.ResetPassword(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrResetTokenInvalid) {
			respondError(c, apierrors.NewInvalidRequestError("Reset token is invalid or expired"))
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// handleUpdateProfile replaces the caller's bio
func (s *APIServer) handleUpdateProfile(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	var req struct {
		Bio string `json:"bio" binding:"max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}

	user, err := s.authService.UpdateBio(c.Request.Context(), userID, req.Bio)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondError(c, apierrors.ErrUserNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// handleMe returns the authenticated user's account
func (s *APIServer) handleMe(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	user, err := s.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondError(c, apierrors.ErrUserNotFoundError)
		} else {
			respondError(c, apierrors.ErrInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
