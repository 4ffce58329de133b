package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func multipartHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("failed to parse multipart form: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func TestSaveFile(t *testing.T) {
	svc, err := NewService(nil, t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	header := multipartHeader(t, "photo.JPG", []byte("fake image bytes"))
	url, err := svc.SaveFile(header)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, ".jpg") {
		t.Errorf("unexpected url %q", url)
	}

	// A second save of the same file gets a different name
	url2, err := svc.SaveFile(header)
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if url == url2 {
		t.Error("uploads must not collide on filename")
	}
}

func TestSaveFile_RejectsUnknownExtension(t *testing.T) {
	svc, err := NewService(nil, t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	header := multipartHeader(t, "malware.exe", []byte("nope"))
	if _, err := svc.SaveFile(header); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestSaveAvatar_FixedName(t *testing.T) {
	svc, err := NewService(nil, t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	userID := uuid.New()
	header := multipartHeader(t, "me.png", []byte("avatar bytes"))

	url, err := svc.SaveAvatar(header, userID)
	if err != nil {
		t.Fatalf("avatar save failed: %v", err)
	}
	want := "/uploads/avatar-" + userID.String() + ".png"
	if url != want {
		t.Errorf("avatar url = %q, want %q", url, want)
	}

	// Re-uploading replaces rather than accumulating
	url2, err := svc.SaveAvatar(header, userID)
	if err != nil {
		t.Fatalf("avatar re-save failed: %v", err)
	}
	if url2 != want {
		t.Errorf("avatar re-upload should keep the fixed name, got %q", url2)
	}
}

func TestSaveBanner_FixedName(t *testing.T) {
	svc, err := NewService(nil, t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	userID := uuid.New()
	header := multipartHeader(t, "wide.webp", []byte("banner bytes"))

	url, err := svc.SaveBanner(header, userID)
	if err != nil {
		t.Fatalf("banner save failed: %v", err)
	}
	want := "/uploads/banner-" + userID.String() + ".webp"
	if url != want {
		t.Errorf("banner url = %q, want %q", url, want)
	}
}
