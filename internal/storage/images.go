package storage

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// URLPrefix is the path under which stored images are served back.
const URLPrefix = "/uploads/"

// MaxFileSize caps a single image upload.
const MaxFileSize = 5 * 1024 * 1024 // 5MB

var (
	ErrInvalidFileType = errors.New("only image files are allowed (jpg, jpeg, png, gif, webp)")
	ErrFileTooLarge    = errors.New("file size exceeds the 5MB limit")
)

var allowedExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

var allowedMIMETypes = map[string]bool{"image/jpeg": true, "image/png": true, "image/gif": true, "image/webp": true}

// ImageStore keeps admin-uploaded property images on local disk
type ImageStore struct {
	dir     string
	maxSize int64
	now     func() time.Time
}

// NewImageStore creates the upload directory if needed
func NewImageStore(dir string) (*ImageStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory %s: %w", dir, err)
	}
	return &ImageStore{dir: dir, maxSize: MaxFileSize, now: time.Now}, nil
}

// Dir returns the directory images are written to
func (s *ImageStore) Dir() string {
	return s.dir
}

// Validate checks size, extension, declared MIME type and sniffed content
// without writing anything.
func (s *ImageStore) Validate(fh *multipart.FileHeader) error {
	if fh.Size > s.maxSize {
		return ErrFileTooLarge
	}

	if !allowedExtensions[strings.ToLower(filepath.Ext(fh.Filename))] {
		return ErrInvalidFileType
	}

	declared, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil || !allowedMIMETypes[declared] {
		return ErrInvalidFileType
	}

	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}
	for m := detected; m != nil; m = m.Parent() {
		if allowedMIMETypes[m.String()] {
			return nil
		}
	}
	return ErrInvalidFileType
}

// Save validates the upload and writes it under a generated name.
// It returns the image reference to record, e.g. "/uploads/1712345678901-123456789.png".
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	if err := s.Validate(fh); err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	fileName := s.generateName(filepath.Ext(fh.Filename))
	filePath := filepath.Join(s.dir, fileName)

	dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file on server: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return URLPrefix + fileName, nil
}

// Remove deletes the file behind a local image reference. Remote URLs and
// files that are already gone are ignored.
func (s *ImageStore) Remove(ref string) error {
	if !IsLocal(ref) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(ref, URLPrefix))
	if name == "." || name == "/" || name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image %s: %w", ref, err)
	}
	return nil
}

// IsLocal reports whether ref points at a file in the upload directory
// rather than a remote URL.
func IsLocal(ref string) bool {
	return strings.HasPrefix(ref, URLPrefix)
}

// generateName builds "<unix millis>-<random 9 digits><ext>" with ext lower-cased.
func (s *ImageStore) generateName(ext string) string {
	return fmt.Sprintf("%d-%09d%s", s.now().UnixMilli(), rand.Intn(1_000_000_000), strings.ToLower(ext))
}
