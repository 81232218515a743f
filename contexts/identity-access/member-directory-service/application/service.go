package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"chama/contexts/identity-access/member-directory-service/domain/entities"
	domainerrors "chama/contexts/identity-access/member-directory-service/domain/errors"
	"chama/contexts/identity-access/member-directory-service/ports"
)

type Service struct {
	Repo           ports.Repository
	Idempotency    ports.IdempotencyStore
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Logger         *slog.Logger
	IdempotencyTTL time.Duration
}

type RegisterPrincipalInput struct {
	Email       string
	DisplayName string
}

func (s Service) RegisterPrincipal(
	ctx context.Context,
	idempotencyKey string,
	input RegisterPrincipalInput,
) (entities.Principal, error) {
	var out entities.Principal
	if strings.TrimSpace(input.Email) == "" {
		return out, domainerrors.ErrInvalidRequest
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}

	requestHash := hashStrings("directory_register_principal", input.Email, input.DisplayName)
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			userID, err := s.newID(ctx)
			if err != nil {
				return nil, err
			}
			principal := entities.Principal{
				UserID:      userID,
				Email:       strings.TrimSpace(strings.ToLower(input.Email)),
				DisplayName: strings.TrimSpace(input.DisplayName),
				CreatedAt:   s.now(),
			}
			if err := s.Repo.CreatePrincipal(ctx, principal); err != nil {
				return nil, err
			}
			return json.Marshal(principal)
		},
	)
	return out, err
}

type CreateGroupInput struct {
	Name    string
	Enabled *bool
}

func (s Service) CreateGroup(
	ctx context.Context,
	idempotencyKey string,
	input CreateGroupInput,
) (entities.Group, error) {
	var out entities.Group
	if strings.TrimSpace(input.Name) == "" {
		return out, domainerrors.ErrInvalidRequest
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}

	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	requestHash := hashStrings("directory_create_group", input.Name, strconv.FormatBool(enabled))
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			groupID, err := s.newID(ctx)
			if err != nil {
				return nil, err
			}
			group := entities.Group{
				GroupID:   groupID,
				Name:      strings.TrimSpace(input.Name),
				Enabled:   enabled,
				CreatedAt: s.now(),
			}
			if err := s.Repo.CreateGroup(ctx, group); err != nil {
				return nil, err
			}
			return json.Marshal(group)
		},
	)
	return out, err
}

type EnrollMemberInput struct {
	UserID  string
	GroupID string
	IsAdmin bool
	Status  string
}

// EnrollMember creates or updates the membership row tying a principal to a
// group. Enrollment into a disabled group is rejected.
func (s Service) EnrollMember(
	ctx context.Context,
	idempotencyKey string,
	input EnrollMemberInput,
) (entities.Membership, error) {
	var out entities.Membership
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.GroupID) == "" {
		return out, domainerrors.ErrInvalidRequest
	}
	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = ports.MembershipStatusActive
	}
	if !ports.IsValidMembershipStatus(status) {
		return out, domainerrors.ErrUnknownMembershipStatus
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}

	requestHash := hashStrings(
		"directory_enroll_member",
		input.UserID,
		input.GroupID,
		strconv.FormatBool(input.IsAdmin),
		status,
	)
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			if _, err := s.Repo.GetPrincipal(ctx, strings.TrimSpace(input.UserID)); err != nil {
				return nil, err
			}
			group, err := s.Repo.GetGroup(ctx, strings.TrimSpace(input.GroupID))
			if err != nil {
				return nil, err
			}
			if !group.Enabled {
				return nil, domainerrors.ErrGroupDisabled
			}

			membershipID, err := s.newID(ctx)
			if err != nil {
				return nil, err
			}
			now := s.now()
			membership, err := s.Repo.UpsertMembership(ctx, entities.Membership{
				MembershipID: membershipID,
				UserID:       strings.TrimSpace(input.UserID),
				GroupID:      strings.TrimSpace(input.GroupID),
				IsAdmin:      input.IsAdmin,
				Status:       status,
				JoinedAt:     now,
				UpdatedAt:    now,
			})
			if err != nil {
				return nil, err
			}
			return json.Marshal(membership)
		},
	)
	return out, err
}

type AssignRoleInput struct {
	UserID     string
	Role       string
	GroupID    string
	AssignedBy string
}

func (s Service) AssignRole(
	ctx context.Context,
	idempotencyKey string,
	input AssignRoleInput,
) (entities.RoleAssignment, error) {
	var out entities.RoleAssignment
	if strings.TrimSpace(input.UserID) == "" {
		return out, domainerrors.ErrInvalidRequest
	}
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if !ports.IsValidRole(role) {
		return out, domainerrors.ErrUnknownRole
	}
	if err := s.requireIdempotency(idempotencyKey); err != nil {
		return out, err
	}

	requestHash := hashStrings("directory_assign_role", input.UserID, role, input.GroupID, input.AssignedBy)
	err := s.runIdempotent(
		ctx,
		strings.TrimSpace(idempotencyKey),
		requestHash,
		func(raw []byte) error { return json.Unmarshal(raw, &out) },
		func() ([]byte, error) {
			if _, err := s.Repo.GetPrincipal(ctx, strings.TrimSpace(input.UserID)); err != nil {
				return nil, err
			}
			assignmentID, err := s.newID(ctx)
			if err != nil {
				return nil, err
			}
			assignment := entities.RoleAssignment{
				AssignmentID: assignmentID,
				UserID:       strings.TrimSpace(input.UserID),
				Role:         role,
				GroupID:      strings.TrimSpace(input.GroupID),
				AssignedBy:   strings.TrimSpace(input.AssignedBy),
				AssignedAt:   s.now(),
			}
			if err := s.Repo.AssignRole(ctx, assignment); err != nil {
				return nil, err
			}
			return json.Marshal(assignment)
		},
	)
	return out, err
}

// AuthoritySnapshot resolves the caller-facing authority value: platform
// roles plus the group-scoped admin flag for the supplied group. The flag is
// true only when an active, admin-flagged membership row exists for exactly
// that group.
func (s Service) AuthoritySnapshot(
	ctx context.Context,
	userID string,
	groupID string,
) (ports.AuthoritySnapshot, error) {
	if strings.TrimSpace(userID) == "" {
		return ports.AuthoritySnapshot{}, domainerrors.ErrInvalidRequest
	}
	userID = strings.TrimSpace(userID)
	groupID = strings.TrimSpace(groupID)

	if _, err := s.Repo.GetPrincipal(ctx, userID); err != nil {
		return ports.AuthoritySnapshot{}, err
	}

	assignments, err := s.Repo.RolesOf(ctx, userID)
	if err != nil {
		return ports.AuthoritySnapshot{}, err
	}

	snapshot := ports.AuthoritySnapshot{
		UserID:     userID,
		GroupID:    groupID,
		Roles:      make([]string, 0, len(assignments)),
		ResolvedAt: s.now(),
	}
	seen := make(map[string]struct{}, len(assignments))
	for _, assignment := range assignments {
		if _, ok := seen[assignment.Role]; ok {
			continue
		}
		seen[assignment.Role] = struct{}{}
		snapshot.Roles = append(snapshot.Roles, assignment.Role)
		if assignment.Role == ports.RoleSuperAdmin {
			snapshot.IsSuperAdmin = true
		}
	}

	if groupID != "" {
		membership, found, err := s.Repo.MembershipOf(ctx, userID, groupID)
		if err != nil {
			return ports.AuthoritySnapshot{}, err
		}
		snapshot.IsGroupAdmin = found &&
			membership.IsAdmin &&
			membership.Status == ports.MembershipStatusActive
	}

	resolveLogger(s.Logger).Debug("authority snapshot resolved",
		"event", "directory_authority_snapshot_resolved",
		"module", "identity-access/member-directory-service",
		"layer", "application",
		"user_id", userID,
		"group_id", groupID,
		"is_super_admin", snapshot.IsSuperAdmin,
		"is_group_admin", snapshot.IsGroupAdmin,
	)
	return snapshot, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) newID(ctx context.Context) (string, error) {
	if s.IDGenerator == nil {
		return "", domainerrors.ErrInvalidRequest
	}
	return s.IDGenerator.NewID(ctx)
}

func (s Service) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.IdempotencyTTL
}

func (s Service) requireIdempotency(key string) error {
	if strings.TrimSpace(key) == "" {
		return domainerrors.ErrIdempotencyKeyRequired
	}
	return nil
}

func (s Service) runIdempotent(
	ctx context.Context,
	key string,
	requestHash string,
	decode func([]byte) error,
	exec func() ([]byte, error),
) error {
	now := s.now()
	record, found, err := s.Idempotency.Get(ctx, key, now)
	if err != nil {
		return err
	}
	if found {
		if record.RequestHash != requestHash {
			return domainerrors.ErrIdempotencyConflict
		}
		return decode(record.Payload)
	}

	payload, err := exec()
	if err != nil {
		return err
	}
	if err := s.Idempotency.Put(ctx, ports.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Payload:     payload,
		ExpiresAt:   now.Add(s.idempotencyTTL()),
	}); err != nil {
		return err
	}

	resolveLogger(s.Logger).Debug("directory idempotent operation committed",
		"event", "directory_idempotent_operation_committed",
		"module", "identity-access/member-directory-service",
		"layer", "application",
		"idempotency_key", key,
	)
	return decode(payload)
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func hashStrings(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}
