package ports

import (
	"context"
	"time"

	"chama/contexts/identity-access/member-directory-service/domain/entities"
)

const (
	RoleSuperAdmin = "super_admin"
	RoleGroupAdmin = "group_admin"
	RoleMember     = "member"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleGroupAdmin, RoleMember:
		return true
	default:
		return false
	}
}

const (
	MembershipStatusActive    = "active"
	MembershipStatusInactive  = "inactive"
	MembershipStatusSuspended = "suspended"
)

func IsValidMembershipStatus(status string) bool {
	switch status {
	case MembershipStatusActive, MembershipStatusInactive, MembershipStatusSuspended:
		return true
	default:
		return false
	}
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type IdempotencyRecord struct {
	Key         string
	RequestHash string
	Payload     []byte
	ExpiresAt   time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	Put(ctx context.Context, record IdempotencyRecord) error
}

// AuthoritySnapshot is the resolved authority value consumed by the access
// guard. IsGroupAdmin is scoped to GroupID and derived only from an active,
// admin-flagged membership row.
type AuthoritySnapshot struct {
	UserID       string    `json:"user_id"`
	GroupID      string    `json:"group_id,omitempty"`
	Roles        []string  `json:"roles"`
	IsSuperAdmin bool      `json:"is_super_admin"`
	IsGroupAdmin bool      `json:"is_group_admin"`
	ResolvedAt   time.Time `json:"resolved_at"`
}

// Repository is the roster read/write boundary. RolesOf and MembershipOf are
// point queries against backing rows with no caching layer in between.
type Repository interface {
	CreatePrincipal(ctx context.Context, principal entities.Principal) error
	GetPrincipal(ctx context.Context, userID string) (entities.Principal, error)
	CreateGroup(ctx context.Context, group entities.Group) error
	GetGroup(ctx context.Context, groupID string) (entities.Group, error)
	UpsertMembership(ctx context.Context, membership entities.Membership) (entities.Membership, error)
	AssignRole(ctx context.Context, assignment entities.RoleAssignment) error
	RolesOf(ctx context.Context, userID string) ([]entities.RoleAssignment, error)
	MembershipOf(ctx context.Context, userID string, groupID string) (entities.Membership, bool, error)
}
