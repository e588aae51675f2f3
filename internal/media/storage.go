// Package media stores item images on the local filesystem and derives the
// small artefacts the catalogue needs from them (BlurHash placeholders and
// thumbnails for export snapshots).
package media

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkordes/granblue-checker/internal/domain"
)

// ErrUnsupportedImage is returned when uploaded bytes are not an image type
// the catalogue accepts.
var ErrUnsupportedImage = errors.New("unsupported image type")

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Storage manages item images under one directory. File names are flat;
// any path component in a name is rejected.
type Storage struct {
	dir string
	mu  sync.RWMutex
}

// NewStorage creates dir if needed and returns a Storage rooted there.
func NewStorage(dir string) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("media.NewStorage: directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media.NewStorage: create %s: %w", dir, err)
	}
	return &Storage{dir: dir}, nil
}

// DetectExtension sniffs data and returns the file extension for it.
func DetectExtension(data []byte) (string, error) {
	ct := http.DetectContentType(data)
	ext, ok := extensions[ct]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, ct)
	}
	return ext, nil
}

// SaveForItem stores data as "<itemID><ext>" and returns that file name,
// which becomes the item's image reference. Any earlier image for the item
// with a different extension is removed.
func (s *Storage) SaveForItem(itemID string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("media.Storage.SaveForItem: %w: image is empty", domain.ErrValidation)
	}
	ext, err := DetectExtension(data)
	if err != nil {
		return "", fmt.Errorf("media.Storage.SaveForItem: %w: %v", domain.ErrValidation, err)
	}
	name := itemID + ext
	if err := checkName(name); err != nil {
		return "", fmt.Errorf("media.Storage.SaveForItem: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range extensions {
		if other != ext {
			_ = os.Remove(filepath.Join(s.dir, itemID+other))
		}
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("media.Storage.SaveForItem: write: %w", err)
	}
	return name, nil
}

// Get returns the bytes stored under name.
// Returns domain.ErrNotFound if no such file exists.
func (s *Storage) Get(name string) ([]byte, error) {
	if err := checkName(name); err != nil {
		return nil, fmt.Errorf("media.Storage.Get: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("media.Storage.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("media.Storage.Get: %w", err)
	}
	return data, nil
}

// Delete removes name. Deleting a missing file is not an error.
func (s *Storage) Delete(name string) error {
	if err := checkName(name); err != nil {
		return fmt.Errorf("media.Storage.Delete: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media.Storage.Delete: %w", err)
	}
	return nil
}

// ContentType returns the MIME type for a stored file name.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for ct, e := range extensions {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}

func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: invalid image name %q", domain.ErrValidation, name)
	}
	return nil
}
