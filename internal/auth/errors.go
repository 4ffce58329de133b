package auth

import "errors"

// Auth-specific errors
var (
	ErrUserAlreadyExists  = errors.New("email or username already exists")
	ErrInvalidRole        = errors.New("role must be creator or subscriber")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailNotFound      = errors.New("email not found")
	ErrResetTokenInvalid  = errors.New("invalid or expired reset token")
)
