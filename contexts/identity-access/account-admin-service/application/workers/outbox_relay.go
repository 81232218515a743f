package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "chama/contexts/identity-access/account-admin-service/application"
	"chama/contexts/identity-access/account-admin-service/ports"
	"chama/internal/shared/events"
)

// OutboxRelay drains pending deletion events to the event bus.
type OutboxRelay struct {
	Outbox        ports.OutboxRepository
	Publisher     ports.DeletionEventPublisher
	Clock         ports.Clock
	SourceService string
	BatchSize     int
	Logger        *slog.Logger
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("account outbox list failed",
			"event", "account_outbox_list_failed",
			"module", "identity-access/account-admin-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, row := range pending {
		event := events.Envelope{
			EventID:       row.OutboxID,
			EventType:     row.EventType,
			SourceService: r.SourceService,
			OccurredAt:    row.CreatedAt,
			EntityType:    "principal",
			SchemaVersion: 1,
			PartitionKey:  row.OutboxID,
			Data:          json.RawMessage(row.Payload),
		}
		if err := r.Publisher.PublishPrincipalDeleted(ctx, event); err != nil {
			logger.Error("account outbox publish failed",
				"event", "account_outbox_publish_failed",
				"module", "identity-access/account-admin-service",
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			return err
		}
	}
	return nil
}
