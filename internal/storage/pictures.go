// Package storage keeps uploaded profile pictures on the local filesystem.
package storage

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrTooLarge        = errors.New("file exceeds the upload limit")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrEmpty           = errors.New("empty upload")
)

// allowed maps sniffed MIME types to the extension the file is stored with.
var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// PictureStore writes images under Dir and hands back paths under Prefix.
type PictureStore struct {
	dir      string
	prefix   string
	maxBytes int64
}

// NewPictureStore creates dir if needed.
func NewPictureStore(dir, prefix string, maxBytes int64) (*PictureStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &PictureStore{dir: dir, prefix: "/" + strings.Trim(prefix, "/"), maxBytes: maxBytes}, nil
}

// Save reads at most maxBytes from r, checks the content type by sniffing
// the bytes (the client-declared type is ignored) and stores the image under
// a random name.  It returns the public path.
func (s *PictureStore) Save(r io.Reader) (string, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrEmpty
	}
	if n > s.maxBytes {
		return "", ErrTooLarge
	}

	mt := mimetype.Detect(buf.Bytes())
	ext, ok := allowed[mt.String()]
	if !ok {
		return "", ErrUnsupportedType
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path.Join(s.prefix, name), nil
}

// Remove deletes a file previously returned by Save.  Paths outside the
// store's prefix are ignored.
func (s *PictureStore) Remove(public string) error {
	if public == "" || !strings.HasPrefix(public, s.prefix+"/") {
		return nil
	}
	name := path.Base(public)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
