package storage

import (
	"context"
	"time"
)

// DefaultPresignedURLExpiry bounds how long a presigned URL stays valid.
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage is the object-store abstraction behind trainer and plan
// images. Clients upload directly against a presigned PUT URL; the API
// never proxies file bytes.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a temporary PUT URL for the key.
	// The uploader must send the same Content-Type it was presigned with.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL returns a temporary GET URL for the key.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes the object. Deleting a missing key is not an error.
	DeleteObject(ctx context.Context, objectKey string) error
}
