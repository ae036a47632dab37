// Package storage keeps attachment bytes on local disk and hands out
// public URLs for them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

const filePerms = 0o644

// ErrInvalidKey is returned for keys that would escape the root directory.
var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore accepts bytes under a caller-chosen key and returns a public URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
}

// DiskStore writes objects under Root. Writes are atomic: readers never see
// a partially written file.
type DiskStore struct {
	Root    string
	BaseURL string
}

// NewDiskStore creates a store rooted at root serving from baseURL.
func NewDiskStore(root, baseURL string) *DiskStore {
	return &DiskStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Put stores r under key and returns its public URL.
func (d *DiskStore) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target, err := d.Path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	if err := atomic.WriteFile(target, r); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := os.Chmod(target, filePerms); err != nil {
		return "", fmt.Errorf("set permissions: %w", err)
	}
	return d.URL(key), nil
}

// Path maps key to a file below Root.
func (d *DiskStore) Path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if key == "" || clean == "/" || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(d.Root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// URL is the public address of key.
func (d *DiskStore) URL(key string) string {
	segments := strings.Split(strings.TrimPrefix(path.Clean("/"+key), "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return d.BaseURL + "/" + strings.Join(segments, "/")
}
