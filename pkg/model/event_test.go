package model_test

import (
	"encoding/json"
	"testing"

	"github.com/jeni-ai/jeni/pkg/model"
	"github.com/m-mizutani/gt"
)

func wrapRecord(t *testing.T, bucket, key string) model.QueueRecord {
	t.Helper()

	message, err := json.Marshal(map[string]string{"bucket": bucket, "key": key})
	gt.NoError(t, err)
	body, err := json.Marshal(map[string]string{"Message": string(message)})
	gt.NoError(t, err)

	return model.QueueRecord{Body: string(body)}
}

func TestQueueRecordUnwrap(t *testing.T) {
	record := wrapRecord(t, "events-bucket", "2024/01/event.json")

	ref, err := record.Unwrap()
	gt.NoError(t, err)
	gt.Equal(t, ref.Bucket, "events-bucket")
	gt.Equal(t, ref.Key, "2024/01/event.json")
}

func TestQueueRecordUnwrapMalformed(t *testing.T) {
	testCases := map[string]string{
		"empty body":          "",
		"body not json":       "not json",
		"message not json":    `{"Message": "not json"}`,
		"message not wrapped": `{"Message": "{\"other\": 1}"}`,
		"missing bucket":      `{"Message": "{\"key\": \"k\"}"}`,
		"missing key":         `{"Message": "{\"bucket\": \"b\"}"}`,
	}

	for name, body := range testCases {
		t.Run(name, func(t *testing.T) {
			record := model.QueueRecord{Body: body}
			_, err := record.Unwrap()
			gt.Error(t, err)
		})
	}
}

func TestDecodeRawEvent(t *testing.T) {
	data := []byte(`{
		"memoryId": "m1",
		"actorId": "u1",
		"timestamp": "2024-01-01T00:00:00Z",
		"metadata": {"user_info": {"firstname": "Ana"}}
	}`)

	event, err := model.DecodeRawEvent(data)
	gt.NoError(t, err)
	gt.Equal(t, event.MemoryID, "m1")
	gt.Equal(t, event.Actor(), "u1")
	gt.Equal(t, event.Timestamp, "2024-01-01T00:00:00Z")
	gt.Equal(t, event.UserInfo()["firstname"], any("Ana"))
}

func TestDecodeRawEventTruncated(t *testing.T) {
	_, err := model.DecodeRawEvent([]byte(`{"memoryId": "m1", "metadata":`))
	gt.Error(t, err)
}

func TestRawEventDefaults(t *testing.T) {
	event, err := model.DecodeRawEvent([]byte(`{"memoryId": "m1"}`))
	gt.NoError(t, err)

	gt.Equal(t, event.Actor(), "user")
	gt.Nil(t, event.UserInfo())
}

func TestActorNamespace(t *testing.T) {
	gt.Equal(t, model.ActorNamespace("u1"), "/users/u1/info")
	gt.Equal(t, model.ActorNamespace(model.DefaultActorID), "/users/user/info")
}
