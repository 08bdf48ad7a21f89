// Package assets stores uploaded binary assets (QR code images, link
// icons) on the local file system, addressed by paths relative to a
// configured root.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/linkhub/internal/apperr"
)

// Store is the interface for asset file operations.
type Store interface {
	// Read returns the raw bytes of the asset at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
	// Delete removes the asset at path (relative to root).
	Delete(path string) error
}

// FS implements Store backed by the local file system.
type FS struct {
	root string // absolute path to asset directory
}

var _ Store = (*FS)(nil)

// NewFS creates an FS store rooted at the given directory, creating it if
// needed.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("assets: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("assets: create root: %w", err)
	}
	return &FS{root: abs}, nil
}

// safePath resolves a relative path against the asset root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("assets: empty path: %w", apperr.ErrValidation)
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("assets: absolute paths not allowed: %s: %w", rel, apperr.ErrValidation)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("assets: resolve path: %w", err)
	}
	// Ensure the resolved path is still under root.
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("assets: path escapes asset root: %s: %w", rel, apperr.ErrValidation)
	}
	return abs, nil
}

// Read returns the raw bytes of an asset.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("assets: %s: %w", path, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("assets: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file, fsync, rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("assets: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".linkhub-tmp-*")
	if err != nil {
		return fmt.Errorf("assets: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("assets: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("assets: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("assets: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("assets: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes an asset.
func (f *FS) Delete(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("assets: %s: %w", path, apperr.ErrNotFound)
		}
		return fmt.Errorf("assets: delete %s: %w", path, err)
	}
	return nil
}

// imageExtensions are the upload types accepted for QR codes and icons.
var imageExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
}

// ValidateImageExt checks an uploaded filename's extension and returns
// its content type.
func ValidateImageExt(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	ctype, ok := imageExtensions[ext]
	if !ok {
		return "", fmt.Errorf("assets: unsupported image type %q: %w", ext, apperr.ErrValidation)
	}
	return ctype, nil
}

// QRCodePath returns the canonical relative path for a link's QR image.
func QRCodePath(linkID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return filepath.Join("qrcodes", linkID+ext)
}
