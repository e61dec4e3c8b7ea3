package repository_test

import (
	"context"
	"testing"

	"github.com/jeni-ai/jeni/pkg/model"
	"github.com/jeni-ai/jeni/pkg/repository"
	"github.com/m-mizutani/gt"
)

func record(memoryID, actorID, field, content string) *model.MemoryRecord {
	return &model.MemoryRecord{
		MemoryID:  memoryID,
		Namespace: model.ActorNamespace(actorID),
		RecordID:  field,
		Content:   content,
		Metadata: model.RecordMetadata{
			Type:  model.RecordTypeUserInfo,
			Field: field,
		},
	}
}

func TestMemoryRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	gt.NoError(t, repo.PutRecord(ctx, record("m1", "u1", "firstname", "Ana")))
	gt.NoError(t, repo.PutRecord(ctx, record("m1", "u1", "firstname", "Anna")))

	// Same record id overwrites in place, no history kept
	records, err := repo.ListRecords(ctx, "m1", "/users/u1/info")
	gt.NoError(t, err)
	gt.Equal(t, len(records), 1)
	gt.Equal(t, records[0].Content, "Anna")
}

func TestMemoryRepositoryNamespacePartitioning(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	gt.NoError(t, repo.PutRecord(ctx, record("m1", "u1", "firstname", "Ana")))
	gt.NoError(t, repo.PutRecord(ctx, record("m1", "u2", "firstname", "Bo")))
	gt.NoError(t, repo.PutRecord(ctx, record("m2", "u1", "firstname", "Cy")))

	u1, err := repo.ListRecords(ctx, "m1", "/users/u1/info")
	gt.NoError(t, err)
	gt.Equal(t, len(u1), 1)
	gt.Equal(t, u1[0].Content, "Ana")

	// Root namespace lists every record of the memory
	all, err := repo.ListRecords(ctx, "m1", "/")
	gt.NoError(t, err)
	gt.Equal(t, len(all), 2)

	other, err := repo.ListRecords(ctx, "m3", "/")
	gt.NoError(t, err)
	gt.Equal(t, len(other), 0)
}

func TestMemoryRepositoryClonesRecords(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()

	original := record("m1", "u1", "firstname", "Ana")
	gt.NoError(t, repo.PutRecord(ctx, original))
	original.Content = "mutated"

	records, err := repo.ListRecords(ctx, "m1", "/users/u1/info")
	gt.NoError(t, err)
	gt.Equal(t, records[0].Content, "Ana")

	records[0].Content = "mutated again"
	again, err := repo.ListRecords(ctx, "m1", "/users/u1/info")
	gt.NoError(t, err)
	gt.Equal(t, again[0].Content, "Ana")
}
