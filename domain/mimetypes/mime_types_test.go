package mimetypes

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	gifHeader = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
	jpgHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		expected MIME
		want     bool
	}{
		{"Plain text with charset", "text/plain; charset=utf-8", TextPlain, true},
		{"PNG", "image/png", ImagePNG, true},
		{"JPEG", "image/jpeg", ImageJPEG, true},
		{"GIF", "image/gif", ImageGIF, true},
		{"Mismatch", "text/plain; charset=utf-8", ImagePNG, false},
		{"Unknown type", "application/octet-stream", TextPlain, false},
		{"Invalid MIME", "not a mime", TextPlain, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Matches(tt.detected, tt.expected)
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestDetectImage(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		mime    MIME
		ext     string
		ok      bool
	}{
		{"PNG", pngHeader, ImagePNG, ".png", true},
		{"GIF", gifHeader, ImageGIF, ".gif", true},
		{"JPEG", jpgHeader, ImageJPEG, ".jpg", true},
		{"Text is refused", []byte("hello bob"), "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			mime, ext, ok := DetectImage(bytes.NewReader(tt.content))
			req.Equal(tt.ok, ok)
			req.Equal(tt.ext, ext)
			if tt.ok {
				req.Equal(tt.mime, mime)
			}
		})
	}
}
