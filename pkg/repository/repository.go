package repository

import (
	"context"

	"github.com/jeni-ai/jeni/pkg/model"
)

// Repository defines the interface for the namespaced memory record store
type Repository interface {
	// PutRecord upserts one record. Writing the same (memory id, namespace,
	// record id) again overwrites the previous content in place.
	PutRecord(ctx context.Context, record *model.MemoryRecord) error

	// ListRecords retrieves the records of a memory under the given
	// namespace. Namespace "/" (or "") returns every record of the memory.
	ListRecords(ctx context.Context, memoryID, namespace string) ([]*model.MemoryRecord, error)
}
