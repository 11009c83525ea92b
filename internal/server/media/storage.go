// Package media relays uploaded image bytes to S3-compatible object storage
// and maps stored objects back to public URLs.
package media

import (
	"context"
	"io"
)

// MaxUploadSize is the largest accepted image payload.
const MaxUploadSize = 10 << 20

type Storage interface {
	// Upload stores the image and returns its public URL. Rejects
	// non-image content types with common.ErrorValidation.
	Upload(ctx context.Context, body io.Reader, size int64, contentType string) (string, error)

	// Delete removes the object a public URL points at. Callers treat
	// failures as best-effort cleanup.
	Delete(ctx context.Context, url string) error
}
