package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	domainerrors "cafe-team.backend/internal/domain/errors"
	"cafe-team.backend/internal/domain/repositories"
)

// LocalBucket stores objects of one bucket on the local filesystem under
// root/<bucket>, and serves them from publicBaseURL/<bucket>/<key>.
type LocalBucket struct {
	root          string
	bucket        string
	publicBaseURL string
}

var _ repositories.ImageStorage = (*LocalBucket)(nil)

// NewLocalBucket creates a new LocalBucket.
func NewLocalBucket(root, bucket, publicBaseURL string) *LocalBucket {
	return &LocalBucket{
		root:          root,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Dir returns the directory holding the bucket's objects.
func (b *LocalBucket) Dir() string {
	return filepath.Join(b.root, b.bucket)
}

// Upload implements ImageStorage.
func (b *LocalBucket) Upload(ctx context.Context, key string, r io.Reader, upsert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := b.fixPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(name), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !upsert {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(name, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return domainerrors.Conflict(fmt.Sprintf("object %s already exists", key))
		}
		return fmt.Errorf("failed to create file %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to copy data to file %s: %w", key, err)
	}
	return nil
}

// Remove implements ImageStorage. Removing a missing object succeeds.
func (b *LocalBucket) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := b.fixPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove file %s: %w", key, err)
	}
	return nil
}

// Exists reports whether key is present in the bucket.
func (b *LocalBucket) Exists(key string) (bool, error) {
	name, err := b.fixPath(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence of file %s: %w", key, err)
}

// PublicURL implements ImageStorage.
func (b *LocalBucket) PublicURL(key string) string {
	return b.publicBaseURL + "/" + b.bucket + "/" + strings.TrimLeft(key, "/")
}

// fixPath maps a bucket key onto the filesystem, rejecting keys that would
// escape the bucket directory.
func (b *LocalBucket) fixPath(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", domainerrors.BadRequest(fmt.Sprintf("invalid object key %q", key))
	}
	return filepath.Join(b.Dir(), filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
