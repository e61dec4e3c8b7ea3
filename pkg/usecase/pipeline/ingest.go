// Package pipeline processes batches of memory events: unwrap the queue
// envelope, fetch the raw event from blob storage, and persist its fact
// fields into the record store. A failure anywhere in one record's path
// skips that record without touching its siblings.
package pipeline

import (
	"context"
	"io"

	"github.com/jeni-ai/jeni/pkg/adapter"
	"github.com/jeni-ai/jeni/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Ingestor resolves inbound queue records to raw memory events
type Ingestor struct {
	storage adapter.Storage
}

// NewIngestor creates an ingestor backed by the given blob store
func NewIngestor(storage adapter.Storage) *Ingestor {
	return &Ingestor{storage: storage}
}

// Ingest unwraps one queue record and fetches the raw event it points at.
// Any unwrap, fetch, or decode failure applies to this record alone.
func (i *Ingestor) Ingest(ctx context.Context, record *model.QueueRecord) (*model.RawEvent, error) {
	ref, err := record.Unwrap()
	if err != nil {
		return nil, err
	}

	reader, err := i.storage.Get(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch raw event",
			goerr.V("bucket", ref.Bucket), goerr.V("key", ref.Key))
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read raw event",
			goerr.V("bucket", ref.Bucket), goerr.V("key", ref.Key))
	}

	return model.DecodeRawEvent(data)
}
