package server

import (
	"chat-relay/domain/mimetypes"
	"chat-relay/errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	ChatImagesRoute = "/chat_images/"
	unknownUploader = "unknown"
)

type uploadResponse struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// UploadServer stores chat images on disk and serves them back.
type UploadServer struct {
	log     *slog.Logger
	dir     string
	maxSize int64
	now     func() time.Time
}

func NewUploadServer(log *slog.Logger, dir string, maxSize int64) *UploadServer {
	return &UploadServer{log: log, dir: dir, maxSize: maxSize, now: time.Now}
}

// Upload accepts a multipart "image" file and an optional "from" field.
// The file is saved as <from>_<unix ms><ext>, the extension coming from the sniffed content.
func (s *UploadServer) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxSize)
	if err := r.ParseMultipartForm(s.maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeStatus(s.log, w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		writeStatus(s.log, w, http.StatusBadRequest, errors.ErrMissingImage.Error())
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeStatus(s.log, w, http.StatusBadRequest, errors.ErrMissingImage.Error())
		return
	}
	defer func() { _ = file.Close() }()

	mime, ext, ok := mimetypes.DetectImage(file)
	if !ok {
		s.log.Debug("Upload refused", "mime", mime)
		writeStatus(s.log, w, http.StatusBadRequest, errors.ErrUnsupportedImage.Error())
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		s.fail(w, err)
		return
	}

	name := fmt.Sprintf("%s_%d%s", uploaderName(r.FormValue("from")), s.now().UnixMilli(), ext)
	if err := s.save(name, file); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(s.log, w, http.StatusOK, uploadResponse{Message: "uploaded", URL: ChatImagesRoute + name})
}

// Files serves previously uploaded images.
func (s *UploadServer) Files() http.Handler {
	return http.StripPrefix(ChatImagesRoute, http.FileServer(http.Dir(s.dir)))
}

func (s *UploadServer) save(name string, src io.Reader) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func (s *UploadServer) fail(w http.ResponseWriter, err error) {
	s.log.Error("Upload failed", "error", err)
	writeStatus(s.log, w, http.StatusInternalServerError, "internal error")
}

// uploaderName keeps the name usable as a single path element.
func uploaderName(from string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, from)
	if strings.Trim(cleaned, "_") == "" {
		return unknownUploader
	}
	return cleaned
}
