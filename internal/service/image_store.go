package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"drobeo/internal/config"
	"drobeo/internal/imaging"
	"drobeo/internal/models"
)

const (
	DefaultImageUploadDir       = "/tmp/drobeo/uploads"
	DefaultImageMaxUploadSizeMB = 10

	// MediaPrefix is the public path stored images are served under.
	MediaPrefix = "/media/"
)

// ImageStore keeps garment photos on local disk as WebP, named by content hash.
type ImageStore struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

func NewImageStore(cfg *config.Config) *ImageStore {
	uploadDir := DefaultImageUploadDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.ImageUploadDir != "" {
			uploadDir = cfg.ImageUploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageStore{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Dir is the directory served at MediaPrefix.
func (s *ImageStore) Dir() string {
	return s.uploadDir
}

// MaxUploadBytes is the largest accepted upload.
func (s *ImageStore) MaxUploadBytes() int64 {
	return s.maxUploadSizeBytes
}

// Load validates size and format and decodes the upload once for every
// later step.
func (s *ImageStore) Load(content []byte, contentType string) (image.Image, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	decoded, _, err := imaging.Decode(content, contentType)
	if err != nil {
		return nil, imageValidationError(err)
	}
	return decoded, nil
}

// Save stores a downscaled WebP copy of the decoded upload and returns its
// public URL. The file is named by the hash of content, so saving the same
// picture twice for a user yields the same file; created reports whether
// this call wrote it.
func (s *ImageStore) Save(_ context.Context, userID uint, content []byte, decoded image.Image) (url string, created bool, err error) {
	name := contentHash(userID, content) + ".webp"
	path := filepath.Join(s.uploadDir, name)
	if _, statErr := os.Stat(path); statErr == nil {
		return MediaPrefix + name, false, nil
	}

	encoded, err := imaging.EncodeWebP(imaging.ResizeToFit(decoded, imaging.StoredMaxSize), imaging.WebPQuality)
	if err != nil {
		return "", false, models.NewInternalError(err)
	}
	if err := writeBytesToFile(path, encoded); err != nil {
		return "", false, models.NewInternalError(err)
	}
	return MediaPrefix + name, true, nil
}

// Remove deletes a stored image by its public URL. Missing files are ignored.
func (s *ImageStore) Remove(url string) error {
	name := filepath.Base(strings.TrimPrefix(url, MediaPrefix))
	if name == "." || name == "/" || name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(s.uploadDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func imageValidationError(err error) error {
	switch {
	case errors.Is(err, imaging.ErrEmpty):
		return models.NewValidationError("No file uploaded")
	case errors.Is(err, imaging.ErrMismatch):
		return models.NewValidationError("Image content type mismatch")
	case errors.Is(err, imaging.ErrTooLarge):
		return models.NewValidationError(fmt.Sprintf("Image dimensions too large (max %d megapixels)", imaging.MaxPixels/1_000_000))
	case errors.Is(err, imaging.ErrUnsupported):
		return models.NewValidationError("Invalid image type")
	default:
		return models.NewValidationError("Invalid image file")
	}
}

func contentHash(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
