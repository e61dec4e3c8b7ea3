package adapter

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// Storage is the blob store holding raw memory events. Each event names
// its own bucket, so the bucket is a per-call argument rather than client
// configuration.
type Storage interface {
	// Get returns a reader for the object at bucket/key
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// storageClient implements Storage using Cloud Storage
type storageClient struct {
	client *storage.Client
}

// NewStorage creates a new Cloud Storage client
func NewStorage(ctx context.Context) (Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{client: client}, nil
}

func (s *storageClient) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj := s.client.Bucket(bucket).Object(key)
	reader, err := obj.NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read from storage",
			goerr.Value("bucket", bucket), goerr.Value("key", key))
	}

	return reader, nil
}
