// services/storage_service.go
package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const (
	uploadBaseDir = "uploads"
	baseURL       = "/uploads"
	maxFileSize   = 10 * 1024 * 1024
	thumbWidth    = 300
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// FileStorage is the blob-store surface the controllers use. SaveImage
// stores an uploaded image under the given folder with a unique name
// derived from prefix, and returns the public URL.
type FileStorage interface {
	SaveImage(file *multipart.FileHeader, folder, prefix string) (string, error)
	Delete(publicURL string) error
}

// LocalStorage keeps uploads on local disk under uploads/ and relies on
// the static file route to serve them. For jpg/png it also writes a
// 300px-wide thumbnail next to the original, under a thumbnails/
// subfolder.
type LocalStorage struct {
	BaseDir string
}

// NewLocalStorage creates the base directory tree.
func NewLocalStorage() (*LocalStorage, error) {
	s := &LocalStorage{BaseDir: uploadBaseDir}
	for _, dir := range []string{"pharmacy", "delivery", "category", "profiles"} {
		if err := os.MkdirAll(filepath.Join(s.BaseDir, dir, "thumbnails"), 0755); err != nil {
			return nil, fmt.Errorf("failed to create uploads directory: %w", err)
		}
	}
	return s, nil
}

// SaveImage validates, stores and thumbnails one uploaded image. The
// stored name is "<prefix>_<uuid><ext>" so repeated uploads never
// collide.
func (s *LocalStorage) SaveImage(file *multipart.FileHeader, folder, prefix string) (string, error) {
	if file.Size > maxFileSize {
		return "", fmt.Errorf("file too large: %d bytes", file.Size)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image format %q", ext)
	}

	filename := fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), ext)
	destPath := filepath.Join(s.BaseDir, folder, filename)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	// Thumbnails are a convenience for list views; a failure here does
	// not fail the upload.
	if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
		if img, err := imaging.Open(destPath); err == nil {
			thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
			thumbPath := filepath.Join(s.BaseDir, folder, "thumbnails", filename)
			_ = imaging.Save(thumb, thumbPath)
		}
	}

	return baseURL + "/" + folder + "/" + filename, nil
}

// Delete removes a stored image and its thumbnail, if any.
func (s *LocalStorage) Delete(publicURL string) error {
	rel, ok := strings.CutPrefix(publicURL, baseURL+"/")
	if !ok {
		return fmt.Errorf("not a managed upload: %s", publicURL)
	}
	rel = filepath.Clean(rel)
	if strings.HasPrefix(rel, "..") {
		return fmt.Errorf("invalid upload path: %s", publicURL)
	}
	path := filepath.Join(s.BaseDir, rel)
	thumbPath := filepath.Join(s.BaseDir, filepath.Dir(rel), "thumbnails", filepath.Base(rel))
	_ = os.Remove(thumbPath)
	return os.Remove(path)
}
