package queue_test

import (
	"testing"

	"github.com/auditiq/auditiq-gateway/pkg/queue"
)

// TestEnvelopeRoundTrip 测试信封编码解码往返.
func TestEnvelopeRoundTrip(t *testing.T) {
	payload := queue.DatasetIngestedPayload{
		Dataset: queue.DatasetRef{
			DatasetID: "d1",
			UserID:    "u1",
			Bucket:    "datasets",
			ObjectKey: "u1/1736812800000_adult.csv",
			Hash:      "abc123",
			Size:      2048,
			Filename:  "adult.csv",
		},
		RowCount:    1000,
		ColumnCount: 14,
		BlobStored:  true,
	}

	msg, err := queue.NewWatermillMessage(queue.TopicDatasetIngested, payload,
		queue.WithTraceID("trace-1"), queue.WithProducer("auditiq-gateway"))
	if err != nil {
		t.Fatalf("NewWatermillMessage failed: %v", err)
	}

	if msg.Metadata.Get("topic") != queue.TopicDatasetIngested {
		t.Errorf("unexpected topic metadata: %s", msg.Metadata.Get("topic"))
	}

	if msg.Metadata.Get("trace_id") != "trace-1" {
		t.Errorf("unexpected trace_id metadata: %s", msg.Metadata.Get("trace_id"))
	}

	env, err := queue.ParseDatasetIngested(msg)
	if err != nil {
		t.Fatalf("ParseDatasetIngested failed: %v", err)
	}

	if env.Header.Topic != queue.TopicDatasetIngested {
		t.Errorf("unexpected header topic: %s", env.Header.Topic)
	}

	if env.Header.Version != queue.PayloadVersionV1 {
		t.Errorf("unexpected header version: %s", env.Header.Version)
	}

	if env.Header.OccurredAt.IsZero() {
		t.Error("occurred_at should be set")
	}

	if env.Payload.Dataset.DatasetID != "d1" || env.Payload.RowCount != 1000 {
		t.Errorf("payload mismatch: %+v", env.Payload)
	}
}

// TestHealedPayloadRoundTrip 自愈事件携带触发修复的转发路径.
func TestHealedPayloadRoundTrip(t *testing.T) {
	payload := queue.DatasetHealedPayload{
		Dataset:            queue.DatasetRef{DatasetID: "d1", UserID: "u1"},
		StaleComputeID:     "compute_old",
		NewComputeID:       "compute_new",
		TriggeredByRequest: "/api/ds/describe",
	}

	msg, err := queue.NewWatermillMessage(queue.TopicDatasetHealed, payload)
	if err != nil {
		t.Fatalf("NewWatermillMessage failed: %v", err)
	}

	env, err := queue.ParseDatasetHealed(msg)
	if err != nil {
		t.Fatalf("ParseDatasetHealed failed: %v", err)
	}

	if env.Payload.NewComputeID != "compute_new" {
		t.Errorf("unexpected new compute id: %s", env.Payload.NewComputeID)
	}

	if env.Payload.TriggeredByRequest != "/api/ds/describe" {
		t.Errorf("unexpected trigger path: %s", env.Payload.TriggeredByRequest)
	}
}

// TestAuditCompletedScore 审计得分在库里是整数，事件载荷用 float64.
func TestAuditCompletedScore(t *testing.T) {
	score := 87

	payload := queue.AuditCompletedPayload{
		AuditID: "a1",
		Status:  "completed",
		Score:   float64(score),
	}

	msg, err := queue.NewWatermillMessage(queue.TopicAuditCompleted, payload)
	if err != nil {
		t.Fatalf("NewWatermillMessage failed: %v", err)
	}

	env, err := queue.ParseWatermillMessage[queue.AuditCompletedPayload](msg)
	if err != nil {
		t.Fatalf("ParseWatermillMessage failed: %v", err)
	}

	if env.Payload.Score != 87 {
		t.Errorf("unexpected score: %v", env.Payload.Score)
	}
}

// TestHeaderOptions 测试事件头可选项.
func TestHeaderOptions(t *testing.T) {
	hdr := queue.NewEventHeader(queue.TopicDatasetHealed,
		queue.WithTraceID("t"), queue.WithProducer("p"))

	if hdr.Topic != queue.TopicDatasetHealed {
		t.Errorf("unexpected topic: %s", hdr.Topic)
	}

	if hdr.TraceID != "t" || hdr.Producer != "p" {
		t.Errorf("options not applied: %+v", hdr)
	}

	if hdr.OccurredAt.Location().String() != "UTC" {
		t.Errorf("occurred_at should be UTC, got %s", hdr.OccurredAt.Location())
	}
}

// TestTopicGroups 测试主题分组包含全部主题.
func TestTopicGroups(t *testing.T) {
	if len(queue.DatasetTopics) != 5 {
		t.Errorf("expected 5 dataset topics, got %d", len(queue.DatasetTopics))
	}

	if len(queue.AuditTopics) != 2 {
		t.Errorf("expected 2 audit topics, got %d", len(queue.AuditTopics))
	}
}
