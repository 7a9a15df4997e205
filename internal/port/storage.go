package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts cloud object storage operations.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	// Download returns domain.ErrNotFound when the object does not exist.
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// BlobStore holds one opaque document that is always read and written whole.
type BlobStore interface {
	// Read returns domain.ErrNotFound when nothing has been written yet.
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	// Describe names the backing location for logs and health output.
	Describe() string
}
