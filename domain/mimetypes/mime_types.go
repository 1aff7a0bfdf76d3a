package mimetypes

import (
	"io"
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown   MIME = "unknown"
	TextPlain MIME = "text/plain"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	ImageGIF  MIME = "image/gif"
	ImageWEBP MIME = "image/webp"
	ImageBMP  MIME = "image/bmp"
)

// Images accepted as chat attachments, with the extension used on disk.
var images = map[MIME]string{
	ImagePNG:  ".png",
	ImageJPEG: ".jpg",
	ImageGIF:  ".gif",
	ImageWEBP: ".webp",
	ImageBMP:  ".bmp",
}

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// DetectImage sniffs the head of r. It returns the image MIME and its
// file extension, or false when the content is not a supported image.
func DetectImage(r io.Reader) (MIME, string, bool) {
	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return Unknown, "", false
	}
	for candidate, ext := range images {
		if _, ok := Matches(detected.String(), candidate); ok {
			return candidate, ext, true
		}
	}
	return MIME(detected.String()), "", false
}
