package utils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Staging is the per-run directory downloaded images are written to before upload
type Staging struct {
	Dir string
}

// NewStaging creates a fresh run directory below root
func NewStaging(root string) (*Staging, error) {
	dir := filepath.Join(root, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Staging{Dir: dir}, nil
}

// SaveJPEG stores data as name.jpg. JPEG input is written unchanged, PNG and GIF
// are re-encoded; anything else is rejected.
func (s *Staging) SaveJPEG(name string, data []byte) (string, error) {
	mt := mimetype.Detect(data)

	var out []byte
	switch {
	case mt.Is("image/jpeg"):
		out = data
	case mt.Is("image/png"), mt.Is("image/gif"):
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
			return "", fmt.Errorf("encode %s: %w", name, err)
		}
		out = buf.Bytes()
	default:
		return "", fmt.Errorf("unsupported image type %s for %s", mt.String(), name)
	}

	path := filepath.Join(s.Dir, name+".jpg")
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Remove deletes staged files, logging the ones that could not be removed
func (s *Staging) Remove(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Printf("[Staging] Failed to remove %s: %v", p, err)
		}
	}
}

// Cleanup removes the whole run directory
func (s *Staging) Cleanup() error {
	return os.RemoveAll(s.Dir)
}
