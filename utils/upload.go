package utils

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxImageSize = 5 * 1024 * 1024 // 5MB

// ImageStore saves uploaded images and removes them on content delete.
// SaveImage returns the public URL persisted on the document.
type ImageStore interface {
	SaveImage(fileHeader *multipart.FileHeader) (string, error)
	DeleteImage(imageURL string) error
}

// LocalStore keeps images on disk under a static-served directory,
// named by a random UUID plus the original extension.
type LocalStore struct {
	Dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir}, nil
}

func (s *LocalStore) SaveImage(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > maxImageSize {
		return "", fmt.Errorf("file exceeds maximum size of %d MB", maxImageSize/(1024*1024))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// Sniff the real content type rather than trusting the header.
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && n == 0 {
		return "", err
	}
	if mimeType := http.DetectContentType(buffer[:n]); !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("only image files are allowed")
	}
	if _, err := src.Seek(0, 0); err != nil {
		return "", err
	}

	filename := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	dst, err := os.Create(filepath.Join(s.Dir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	return "/uploads/" + filename, nil
}

func (s *LocalStore) DeleteImage(imageURL string) error {
	name := strings.TrimPrefix(imageURL, "/uploads/")
	if name == "" || name == imageURL {
		return fmt.Errorf("not a local upload: %s", imageURL)
	}
	return os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
}
