package s3

import (
	"bytes"
	"context"
	"fmt"

	"farerules/internal/port"
)

const jsonContentType = "application/json"

type blobStore struct {
	storage port.ObjectStorage
	bucket  string
	key     string
}

// NewBlobStore keeps the rule document as a single object.
func NewBlobStore(storage port.ObjectStorage, bucket, key string) port.BlobStore {
	return &blobStore{storage: storage, bucket: bucket, key: key}
}

func (s *blobStore) Read(ctx context.Context) ([]byte, error) {
	return s.storage.Download(ctx, s.bucket, s.key)
}

func (s *blobStore) Write(ctx context.Context, data []byte) error {
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.bucket,
		Key:         s.key,
		Body:        bytes.NewReader(data),
		ContentType: jsonContentType,
		Size:        int64(len(data)),
	})
	if err != nil {
		return fmt.Errorf("writing s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

func (s *blobStore) Describe() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}
