package content

import (
	"testing"

	"github.com/onlyskins/onlyskins/internal/models"
)

func TestMediaTypeFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want models.MediaType
	}{
		{"/uploads/clip.mp4", models.MediaTypeVideo},
		{"/uploads/clip.MOV", models.MediaTypeVideo},
		{"/uploads/clip.webm", models.MediaTypeVideo},
		{"/uploads/pic.jpg", models.MediaTypeImage},
		{"/uploads/pic.png", models.MediaTypeImage},
		{"/uploads/pic.webp", models.MediaTypeImage},
		{"/uploads/noextension", models.MediaTypeImage},
		{"https://cdn.example.com/a/b/trailer.mp4", models.MediaTypeVideo},
	}

	for _, tt := range tests {
		if got := MediaTypeFromURL(tt.url); got != tt.want {
			t.Errorf("MediaTypeFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
