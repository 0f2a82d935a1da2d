// Package storage keeps uploaded profile pictures on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("file too large")
	// ErrNotImage is returned when the sniffed content type is not image/*.
	ErrNotImage = errors.New("file is not an image")
	// ErrInvalidName is returned for names that would escape the upload directory.
	ErrInvalidName = errors.New("invalid file name")
)

// Storage stores and resolves uploaded files.
type Storage interface {
	// Save validates and stores the content, returning the stored name.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	// Remove deletes a stored file. Missing files are not an error.
	Remove(name string) error
	// Path resolves a stored name to a filesystem path.
	Path(name string) (string, error)
}

// LocalStorage writes files into a single directory.
type LocalStorage struct {
	dir     string
	maxSize int64
}

// NewLocal creates the directory if needed.
func NewLocal(dir string, maxSize int64) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, maxSize: maxSize}, nil
}

// Save stores an image under "<uuid>-<original stem><sniffed extension>".
func (s *LocalStorage) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return "", ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") || mt.Is("image/svg+xml") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mt.String())
	}

	name := uuid.NewString() + "-" + sanitize(filename, mt.Extension())
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return name, nil
}

// Remove deletes a stored file.
func (s *LocalStorage) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path resolves a stored name, rejecting anything but a plain file name.
func (s *LocalStorage) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// sanitize keeps the stem of the base name with letters, digits, dot, dash
// and underscore, and appends ext.
func sanitize(filename, ext string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		out = "upload"
	}
	return out + ext
}
