// Package storage persists opaque blobs by key. It backs the index history
// and the node content cache.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Type storage backend selector
type Type string

const (
	TypeFilesystem Type = "filesystem"
	TypeBlob       Type = "blob"
)

// ErrInvalidKey a key that would escape the storage root
var ErrInvalidKey = errors.New("invalid storage key")

// supportedBlobSchemes lists the URL schemes supported by blob storage
var supportedBlobSchemes = []string{"gs://", "s3://", "azblob://", "mem://"}

// Storage defines the contract for persistence backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Write stores data with the given key.
	Write(ctx context.Context, key string, data []byte) error

	// Read retrieves data for the given key.
	// Returns os.ErrNotExist if the key does not exist.
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns keys matching the given prefix, sorted descending (newest first).
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data for the given key.
	// Returns nil if the key does not exist.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the storage backend.
	Close() error
}

// Open creates a storage backend. dir is used by the filesystem backend,
// bucketURL and prefix by the blob backend.
func Open(ctx context.Context, storageType Type, dir, bucketURL, prefix string) (Storage, error) {
	switch storageType {
	case TypeBlob:
		if bucketURL == "" {
			return nil, fmt.Errorf("blob bucket URL is required for storage type %q (supported schemes: %s)", TypeBlob, strings.Join(supportedBlobSchemes, ", "))
		}
		if !IsValidBlobScheme(bucketURL) {
			return nil, fmt.Errorf("unsupported blob storage URL scheme in %q; supported schemes: %s", bucketURL, strings.Join(supportedBlobSchemes, ", "))
		}
		return NewBlobStorage(ctx, bucketURL, prefix)
	case TypeFilesystem, "":
		return NewFilesystemStorage(dir)
	default:
		return nil, fmt.Errorf("unknown storage type: %s (supported: %s, %s)", storageType, TypeFilesystem, TypeBlob)
	}
}

// IsValidBlobScheme checks if the bucket URL has a supported scheme
func IsValidBlobScheme(bucketURL string) bool {
	for _, scheme := range supportedBlobSchemes {
		if strings.HasPrefix(bucketURL, scheme) {
			return true
		}
	}
	return false
}

// BlobProvider returns a human-readable provider name from the URL scheme
func BlobProvider(bucketURL string) string {
	switch {
	case strings.HasPrefix(bucketURL, "gs://"):
		return "Google Cloud Storage"
	case strings.HasPrefix(bucketURL, "s3://"):
		return "AWS S3"
	case strings.HasPrefix(bucketURL, "azblob://"):
		return "Azure Blob Storage"
	case strings.HasPrefix(bucketURL, "mem://"):
		return "in-memory"
	default:
		return "unknown"
	}
}
