// Package assets manages image files uploaded alongside posts. Files are
// stored on local disk under a configured directory and referenced by a
// relative path like "images/<uuid>.png".
package assets

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"livefeed/internal/models"
	"livefeed/internal/observability"
)

// extensions maps the accepted image content types to file extensions.
// Anything absent from this map is rejected at save time.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
}

// Store persists uploaded images under a base directory.
type Store struct {
	dir string
	log *slog.Logger
}

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image directory %q: %w", dir, err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Save writes the given image bytes under a fresh random name and returns
// the relative reference to store on the post. An unsupported content type
// is a validation failure, not an internal error.
func (s *Store) Save(content []byte, contentType string) (string, error) {
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", models.NewValidationError("Validation failed.", models.FieldViolation{
			Field:   "image",
			Message: "Unsupported image type.",
		})
	}

	name := uuid.NewString() + ext
	full := filepath.Join(s.dir, name)

	if err := os.WriteFile(full, content, 0o644); err != nil {
		return "", models.NewInternalError(fmt.Errorf("writing image %q: %w", full, err))
	}

	observability.ImageBytesWritten.Add(float64(len(content)))

	return path.Join("images", name), nil
}

// Remove deletes the file behind a stored reference. Removal is best
// effort: a missing or undeletable file is logged and swallowed so that
// post mutations never fail over stale disk state.
func (s *Store) Remove(ref string) {
	full, err := s.resolve(ref)
	if err != nil {
		s.log.Warn("skipping image removal", "ref", ref, "error", err)
		return
	}

	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		s.log.Warn("failed to remove image", "ref", ref, "error", err)
	}
}

// resolve maps a stored reference back onto a path inside the base
// directory, rejecting anything that would escape it.
func (s *Store) resolve(ref string) (string, error) {
	name := path.Base(path.Clean(ref))
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid image reference %q", ref)
	}
	return filepath.Join(s.dir, name), nil
}
