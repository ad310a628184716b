// Package storage contains the object storage abstraction used for uploads
// and blog content images, with a local disk driver and an S3-compatible
// (MinIO) driver. Keys are slash-separated and relative to the storage root.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

var (
	// ErrInvalidKey is returned for keys that escape the root.
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrNotExist is returned when a key has no object or directory.
	ErrNotExist = errors.New("object does not exist")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object or directory in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
	IsDir        bool
}

// Name returns the last element of the key.
func (o ObjectInfo) Name() string {
	return path.Base(o.Key)
}

// Storage is the object storage interface shared by both drivers.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat describes a key, which may be a directory.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// List returns the immediate children of prefix ("" is the root).
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	// MakeDir creates a directory (and its parents).
	MakeDir(ctx context.Context, key string) error
	// DeletePrefix removes a directory and everything below it. The root cannot be removed.
	DeletePrefix(ctx context.Context, prefix string) error
	// URL returns the public URL of a key.
	URL(key string) string
}

// CleanKey normalizes a user supplied key. Backslashes are treated as
// separators and leading slashes are dropped, so "/" is the root ("").
// ".." segments, drive letters and NUL bytes are rejected.
func CleanKey(key string) (string, error) {
	k := strings.ReplaceAll(strings.TrimSpace(key), `\`, "/")
	if strings.ContainsRune(k, 0) || strings.Contains(k, ":") {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(k, "/") {
		if seg == ".." {
			return "", ErrInvalidKey
		}
	}
	return strings.TrimPrefix(path.Clean("/"+k), "/"), nil
}

func joinURL(base, key string) string {
	if key == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + key
}
