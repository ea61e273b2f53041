package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// Error constants for the storage layer.
var (
	ErrObjectNotFound = StorageError("object not found in storage")
	ErrInvalidKey     = StorageError("invalid object key")
)

// StorageError helps distinguish storage errors
type StorageError string

func (e StorageError) Error() string {
	return string(e)
}

// ObjectStore is a key-value byte store holding whole objects.
type ObjectStore interface {
	// GetObject returns the bytes stored under key, or ErrObjectNotFound.
	GetObject(ctx context.Context, key string) ([]byte, error)

	// PutObject stores data under key, replacing any previous value.
	PutObject(ctx context.Context, key string, data []byte) error

	// DeleteObject removes key. Deleting a missing key is not an error.
	DeleteObject(ctx context.Context, key string) error
}

// Presigner is implemented by stores that can hand out temporary download
// links for an object.
type Presigner interface {
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}
