package repository

import (
	"context"
	"sync"

	"github.com/jeni-ai/jeni/pkg/model"
)

// memoryRepo is an in-memory Repository for local development and tests.
// Records are cloned on read so callers never share mutable state with the
// store.
type memoryRepo struct {
	mu      sync.RWMutex
	records map[string]map[string]*model.MemoryRecord // memory id -> doc id -> record
}

// NewMemory creates an in-memory repository
func NewMemory() Repository {
	return &memoryRepo{
		records: make(map[string]map[string]*model.MemoryRecord),
	}
}

func (r *memoryRepo) PutRecord(ctx context.Context, record *model.MemoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	docs, ok := r.records[record.MemoryID]
	if !ok {
		docs = make(map[string]*model.MemoryRecord)
		r.records[record.MemoryID] = docs
	}

	clone := *record
	docs[docID(record.Namespace, record.RecordID)] = &clone
	return nil
}

func (r *memoryRepo) ListRecords(ctx context.Context, memoryID, namespace string) ([]*model.MemoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*model.MemoryRecord
	for _, rec := range r.records[memoryID] {
		if namespace != "" && namespace != "/" && rec.Namespace != namespace {
			continue
		}
		clone := *rec
		records = append(records, &clone)
	}

	return records, nil
}
