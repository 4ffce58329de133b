package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service errors
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file exceeds the size limit")
)

// MaxFileSize caps a single upload at 50 MB
const MaxFileSize = 50 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".mp4":  true,
	".mov":  true,
	".webm": true,
}

// Service stores uploaded files on local disk and records avatar URLs
type Service struct {
	db  *pgxpool.Pool
	dir string
}

// NewService creates a new upload service rooted at dir
func NewService(db *pgxpool.Pool, dir string) (*Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Service{db: db, dir: dir}, nil
}

// SaveFile writes one multipart upload to disk under a unique timestamped
// name and returns its public URL path.
func (s *Service) SaveFile(header *multipart.FileHeader) (string, error) {
	ext, err := checkFile(header)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.New().String()[:8], ext)
	return s.write(header, name)
}

// SaveAvatar writes a user's avatar under a fixed per-user name so a new
// upload replaces the old one.
func (s *Service) SaveAvatar(header *multipart.FileHeader, userID uuid.UUID) (string, error) {
	ext, err := checkFile(header)
	if err != nil {
		return "", err
	}
	return s.write(header, fmt.Sprintf("avatar-%s%s", userID, ext))
}

// SaveBanner writes a user's profile banner under a fixed per-user name
func (s *Service) SaveBanner(header *multipart.FileHeader, userID uuid.UUID) (string, error) {
	ext, err := checkFile(header)
	if err != nil {
		return "", err
	}
	return s.write(header, fmt.Sprintf("banner-%s%s", userID, ext))
}

func checkFile(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}
	ext := strings.ToLower(path.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}
	return ext, nil
}

func (s *Service) write(header *multipart.FileHeader, name string) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return "/uploads/" + name, nil
}

// SetAvatarURL stores a user's avatar URL
func (s *Service) SetAvatarURL(ctx context.Context, userID uuid.UUID, url string) error {
	_, err := s.db.Exec(ctx, "UPDATE users SET avatar_url = $1 WHERE id = $2", url, userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	return nil
}

// SetBannerURL stores a user's profile banner URL
func (s *Service) SetBannerURL(ctx context.Context, userID uuid.UUID, url string) error {
	_, err := s.db.Exec(ctx, "UPDATE users SET banner_url = $1 WHERE id = $2", url, userID)
	if err != nil {
		return fmt.Errorf("failed to update banner: %w", err)
	}
	return nil
}
