package pipeline

import (
	"context"
	"fmt"

	"github.com/jeni-ai/jeni/pkg/model"
	"github.com/jeni-ai/jeni/pkg/repository"
	"github.com/jeni-ai/jeni/pkg/utils/logging"
)

// Writer persists fact fields into the record store under the actor's
// namespace.
type Writer struct {
	repo repository.Repository
}

// NewWriter creates a writer backed by the given record store
func NewWriter(repo repository.Repository) *Writer {
	return &Writer{repo: repo}
}

// Write upserts one record per non-empty field. An empty memory id means
// the event carries no memory to write to; the writer is then a no-op
// returning 0. A failure writing one field is logged and does not stop
// sibling fields. The return value counts fields attempted, not fields
// that succeeded.
func (w *Writer) Write(ctx context.Context, memoryID, actorID string, facts map[string]any, timestamp string) int {
	if memoryID == "" {
		return 0
	}

	namespace := model.ActorNamespace(actorID)

	attempted := 0
	for field, value := range facts {
		content := contentString(value)
		if content == "" {
			continue
		}

		attempted++
		record := &model.MemoryRecord{
			MemoryID:  memoryID,
			Namespace: namespace,
			RecordID:  field,
			Content:   content,
			Metadata: model.RecordMetadata{
				Type:        model.RecordTypeUserInfo,
				Field:       field,
				ExtractedAt: timestamp,
			},
		}

		if err := w.repo.PutRecord(ctx, record); err != nil {
			logging.From(ctx).Error("failed to store fact field",
				"memory_id", memoryID, "namespace", namespace, "field", field, "error", err)
		}
	}

	return attempted
}

// contentString renders a fact value for storage. Nil and empty values are
// treated as absent.
func contentString(value any) string {
	switch t := value.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
