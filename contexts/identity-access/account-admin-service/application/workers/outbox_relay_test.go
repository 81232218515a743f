package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"chama/contexts/identity-access/account-admin-service/adapters/memory"
	"chama/contexts/identity-access/account-admin-service/ports"
	"chama/internal/shared/events"
)

type capturePublisher struct {
	published []events.Envelope
}

func (p *capturePublisher) PublishPrincipalDeleted(_ context.Context, event events.Envelope) error {
	p.published = append(p.published, event)
	return nil
}

func TestOutboxRelayPublishesAndMarksRows(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturePublisher{}

	payload, _ := json.Marshal(map[string]string{"user_id": "u9"})
	if err := store.AppendOutbox(context.Background(), ports.OutboxMessage{
		OutboxID:  "o-1",
		EventType: "account.principal_deleted",
		Payload:   payload,
		CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	relay := OutboxRelay{
		Outbox:        store,
		Publisher:     publisher,
		Clock:         store,
		SourceService: "chama-api",
		BatchSize:     10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(publisher.published))
	}
	event := publisher.published[0]
	if event.EventID != "o-1" || event.EventType != "account.principal_deleted" {
		t.Fatalf("unexpected envelope %+v", event)
	}
	if event.SourceService != "chama-api" || event.EntityType != "principal" {
		t.Fatalf("unexpected envelope metadata %+v", event)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows after relay, got %d", len(pending))
	}

	// A second run must be a no-op.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected no duplicate publish, got %d", len(publisher.published))
	}
}
