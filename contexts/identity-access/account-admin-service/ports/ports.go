package ports

import (
	"context"
	"time"

	"chama/internal/shared/events"
)

const RoleSuperAdmin = "super_admin"

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Caller is the authenticated identity resolved from a session token.
type Caller struct {
	UserID string
	Email  string
}

// IdentityProvider is the session/identity collaborator. DeletePrincipal is
// expected to cascade to all dependent records as a single atomic operation
// owned by the provider.
type IdentityProvider interface {
	VerifyToken(ctx context.Context, token string) (Caller, error)
	DeletePrincipal(ctx context.Context, userID string) error
}

// MembershipGrant is the admin flag carried by one active membership row.
type MembershipGrant struct {
	IsAdmin bool
}

// AuthorityReader re-derives caller authority from source-of-truth rows.
// ActiveMembership returns only rows with status = active for exactly the
// supplied group; an admin membership elsewhere never surfaces here.
type AuthorityReader interface {
	RolesOf(ctx context.Context, userID string) ([]string, error)
	ActiveMembership(ctx context.Context, userID string, groupID string) (MembershipGrant, bool, error)
}

// OutboxMessage represents a pending relay message.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxRepository supports deletion-event persistence and worker relay.
type OutboxRepository interface {
	AppendOutbox(ctx context.Context, message OutboxMessage) error
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// DeletionEventPublisher emits principal-deleted events to the event bus.
type DeletionEventPublisher interface {
	PublishPrincipalDeleted(ctx context.Context, event events.Envelope) error
}
