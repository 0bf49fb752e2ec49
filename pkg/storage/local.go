package storage

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps uploads on the local filesystem. It is the
// development fallback when S3 is not configured.
type LocalStore struct {
	uploadDir string
	baseURL   string
}

// NewLocalStore creates a filesystem-backed media store. Files are
// served from baseURL/uploads.
func NewLocalStore(uploadDir, baseURL string) (*LocalStore, error) {
	if uploadDir == "" {
		uploadDir = "uploads"
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalStore{
		uploadDir: uploadDir,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}, nil
}

func (l *LocalStore) Upload(file *multipart.FileHeader, folder string) (ImageRef, error) {
	folderPath := filepath.Join(l.uploadDir, folder)
	if err := os.MkdirAll(folderPath, 0o755); err != nil {
		return ImageRef{}, fmt.Errorf("failed to create folder directory: %w", err)
	}

	fileName := uniqueFilename(file.Filename)

	src, err := file.Open()
	if err != nil {
		return ImageRef{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(folderPath, fileName))
	if err != nil {
		return ImageRef{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return ImageRef{}, fmt.Errorf("failed to save file: %w", err)
	}

	return ImageRef{
		URL:      fmt.Sprintf("%s/uploads/%s/%s", l.baseURL, folder, fileName),
		Filename: fileName,
	}, nil
}

func (l *LocalStore) Delete(imageURL string) error {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return fmt.Errorf("invalid image URL %q: %w", imageURL, err)
	}

	rel := strings.TrimPrefix(parsed.Path, "/uploads/")
	if rel == parsed.Path {
		return fmt.Errorf("URL %q is not a local upload", imageURL)
	}

	path := filepath.Join(l.uploadDir, filepath.FromSlash(rel))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			log.Printf("image %s already gone", path)
			return nil
		}
		return err
	}
	return nil
}
