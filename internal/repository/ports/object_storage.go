package ports

import (
	"context"
	"io"
)

// ObjectStorage stores avatar images. The bucket is bound at construction;
// Upload returns the public URL of the stored object.
type ObjectStorage interface {
	Upload(ctx context.Context, objectName, contentType string, reader io.Reader, size int64) (string, error)
}
