package model

// DefaultActorID is the sentinel actor used when no source names one.
const DefaultActorID = "user"

// RecordTypeUserInfo marks records produced by the fact pipeline.
const RecordTypeUserInfo = "user_info"

// ActorNamespace returns the namespace scoping facts to one actor. The
// grammar is part of the wire contract with the record store; changing it
// requires a migration of existing records.
func ActorNamespace(actorID string) string {
	return "/users/" + actorID + "/info"
}

// MemoryRecord is one fact persisted in the record store. Records sharing a
// memory id are partitioned by actor via the namespace, and the record id
// equals the fact field name, so rewriting a field overwrites in place.
type MemoryRecord struct {
	MemoryID  string
	Namespace string
	RecordID  string
	Content   string
	Metadata  RecordMetadata
}

// RecordMetadata annotates a record with its origin.
type RecordMetadata struct {
	Type        string `json:"type"`
	Field       string `json:"field"`
	ExtractedAt string `json:"extracted_at"`
}
