package model

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
)

// EventBatch is the inbound payload of the batch entrypoint.
type EventBatch struct {
	Records []QueueRecord `json:"Records"`
}

// QueueRecord is one element of an inbound batch. Body is a JSON-encoded
// notification envelope as delivered by the queue.
type QueueRecord struct {
	Body string `json:"body"`
}

// notification is the pub/sub envelope carried inside a queue record body.
// Its Message field is itself a JSON document naming the stored object.
type notification struct {
	Message string `json:"Message"`
}

// ObjectRef points at the blob holding a raw memory event.
type ObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Unwrap peels both envelope layers and returns the object reference.
// A failure at any layer means this record cannot be processed.
func (r *QueueRecord) Unwrap() (*ObjectRef, error) {
	var note notification
	if err := json.Unmarshal([]byte(r.Body), &note); err != nil {
		return nil, goerr.Wrap(err, "failed to decode notification envelope")
	}

	var ref ObjectRef
	if err := json.Unmarshal([]byte(note.Message), &ref); err != nil {
		return nil, goerr.Wrap(err, "failed to decode notification message")
	}

	if ref.Bucket == "" || ref.Key == "" {
		return nil, goerr.New("notification message lacks object location",
			goerr.V("bucket", ref.Bucket), goerr.V("key", ref.Key))
	}

	return &ref, nil
}

// RawEvent is a memory event fetched from blob storage. The payload is
// producer-controlled, so every field is optional at the decode boundary
// and checked explicitly before use.
type RawEvent struct {
	MemoryID  string         `json:"memoryId"`
	ActorID   string         `json:"actorId"`
	Timestamp string         `json:"timestamp"`
	Metadata  *EventMetadata `json:"metadata"`
}

// EventMetadata carries the optional user_info substructure.
type EventMetadata struct {
	UserInfo map[string]any `json:"user_info"`
}

// DecodeRawEvent parses a raw event blob.
func DecodeRawEvent(data []byte) (*RawEvent, error) {
	var event RawEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, goerr.Wrap(err, "failed to decode raw event")
	}
	return &event, nil
}

// UserInfo returns the extracted fact fields of the event, or nil when the
// event carries none.
func (e *RawEvent) UserInfo() map[string]any {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata.UserInfo
}

// Actor returns the actor id of the event, falling back to the default
// sentinel when the producer omitted it.
func (e *RawEvent) Actor() string {
	if e.ActorID == "" {
		return DefaultActorID
	}
	return e.ActorID
}
