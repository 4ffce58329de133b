package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/onlyskins/onlyskins/internal/errors"
	"github.com/onlyskins/onlyskins/internal/middleware"
	"github.com/onlyskins/onlyskins/internal/upload"
)

// handleUploadMedia stores one media file and returns its public URL
func (s *APIServer) handleUploadMedia(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("A file field is required"))
		return
	}

	url, err := s.uploadService.SaveFile(header)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// handleUploadAvatar stores the caller's avatar and updates their profile
func (s *APIServer) handleUploadAvatar(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("A file field is required"))
		return
	}

	url, err := s.uploadService.SaveAvatar(header, userID)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	if err := s.uploadService.SetAvatarURL(c.Request.Context(), userID, url); err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// handleUploadBanner stores the caller's profile banner and updates their profile
func (s *APIServer) handleUploadBanner(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("A file field is required"))
		return
	}

	url, err := s.uploadService.SaveBanner(header, userID)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	if err := s.uploadService.SetBannerURL(c.Request.Context(), userID, url); err != nil {
		respondError(c, apierrors.ErrInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, upload.ErrUnsupportedType):
		respondError(c, apierrors.NewValidationError("Unsupported file type"))
	case errors.Is(err, upload.ErrFileTooLarge):
		respondError(c, apierrors.NewValidationError("File exceeds the size limit"))
	default:
		respondError(c, apierrors.ErrInternalServerError)
	}
}
