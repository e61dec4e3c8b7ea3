package repository

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/jeni-ai/jeni/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

const (
	memoriesCollection = "memories"
	recordsCollection  = "records"
)

// firestoreRepo implements Repository using Firestore. One top-level
// document per memory id, one sub-document per (namespace, record id).
type firestoreRepo struct {
	client *firestore.Client
}

// recordDoc is the Firestore document shape of a memory record
type recordDoc struct {
	MemoryID    string    `firestore:"memory_id"`
	Namespace   string    `firestore:"namespace"`
	RecordID    string    `firestore:"record_id"`
	Content     string    `firestore:"content"`
	Type        string    `firestore:"type"`
	Field       string    `firestore:"field"`
	ExtractedAt string    `firestore:"extracted_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

// NewFirestore creates a new Firestore-backed repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (Repository, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &firestoreRepo{client: client}, nil
}

// docID flattens namespace + record id into a Firestore document id.
// Firestore document ids cannot contain "/".
func docID(namespace, recordID string) string {
	ns := strings.Trim(namespace, "/")
	return strings.ReplaceAll(ns, "/", ":") + ":" + recordID
}

func (r *firestoreRepo) PutRecord(ctx context.Context, record *model.MemoryRecord) error {
	doc := r.client.
		Collection(memoriesCollection).Doc(record.MemoryID).
		Collection(recordsCollection).Doc(docID(record.Namespace, record.RecordID))

	data := recordDoc{
		MemoryID:    record.MemoryID,
		Namespace:   record.Namespace,
		RecordID:    record.RecordID,
		Content:     record.Content,
		Type:        record.Metadata.Type,
		Field:       record.Metadata.Field,
		ExtractedAt: record.Metadata.ExtractedAt,
		UpdatedAt:   time.Now().UTC(),
	}

	if _, err := doc.Set(ctx, data); err != nil {
		return goerr.Wrap(err, "failed to put memory record",
			goerr.V("memory_id", record.MemoryID),
			goerr.V("namespace", record.Namespace),
			goerr.V("record_id", record.RecordID))
	}

	return nil
}

func (r *firestoreRepo) ListRecords(ctx context.Context, memoryID, namespace string) ([]*model.MemoryRecord, error) {
	col := r.client.Collection(memoriesCollection).Doc(memoryID).Collection(recordsCollection)

	query := col.Query
	if namespace != "" && namespace != "/" {
		query = query.Where("namespace", "==", namespace)
	}

	var records []*model.MemoryRecord
	iter := query.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list memory records",
				goerr.V("memory_id", memoryID), goerr.V("namespace", namespace))
		}

		var doc recordDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode memory record",
				goerr.V("doc", snap.Ref.ID))
		}

		records = append(records, &model.MemoryRecord{
			MemoryID:  doc.MemoryID,
			Namespace: doc.Namespace,
			RecordID:  doc.RecordID,
			Content:   doc.Content,
			Metadata: model.RecordMetadata{
				Type:        doc.Type,
				Field:       doc.Field,
				ExtractedAt: doc.ExtractedAt,
			},
		})
	}

	return records, nil
}
