// Package storage keeps uploaded profile images on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedImage is returned for uploads that are not jpeg, png, gif
// or webp.
var ErrUnsupportedImage = errors.New("unsupported image type")

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DiskImageStore writes images under Dir with random names.
type DiskImageStore struct {
	Dir      string
	MaxBytes int64
}

func NewDiskImageStore(dir string, maxBytes int64) *DiskImageStore {
	return &DiskImageStore{Dir: dir, MaxBytes: maxBytes}
}

// Save copies r to a new file and returns its path relative to the store,
// e.g. "3f0c…e1.png".  contentType must be one of the accepted image types.
func (s *DiskImageStore) Save(r io.Reader, contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageExt[ct]
	if !ok {
		return "", ErrUnsupportedImage
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.NewString() + ext
	path := filepath.Join(s.Dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image: %w", err)
	}

	src := r
	if s.MaxBytes > 0 {
		src = io.LimitReader(r, s.MaxBytes+1)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.MaxBytes > 0 && n > s.MaxBytes {
		err = fmt.Errorf("image exceeds %d bytes", s.MaxBytes)
	}
	if err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return name, nil
}

// Remove deletes a previously saved image.  Missing files are ignored.
func (s *DiskImageStore) Remove(name string) error {
	err := os.Remove(filepath.Join(s.Dir, filepath.Base(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
