package storage

import "testing"

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712345678/reelmate/avatars/1-me.webp", "reelmate/avatars/1-me"},
		{"https://res.cloudinary.com/demo/image/upload/avatars/me.png", "avatars/me"},
		{"https://res.cloudinary.com/demo/image/upload/videos/clip.webp", "videos/clip"},
		{"https://example.com/no-upload-segment/me.png", ""},
		{"https://res.cloudinary.com/demo/image/upload", ""},
	}

	for _, tt := range tests {
		if got := extractPublicID(tt.url); got != tt.want {
			t.Errorf("extractPublicID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
