package memory

import (
	"context"
	"sync"
	"time"

	"chama/contexts/identity-access/member-directory-service/domain/entities"
	domainerrors "chama/contexts/identity-access/member-directory-service/domain/errors"
	"chama/contexts/identity-access/member-directory-service/ports"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing repository/idempotency/clock
// ports. It is intended for tests and local development wiring.
type Store struct {
	mu sync.RWMutex

	principals  map[string]entities.Principal
	groups      map[string]entities.Group
	memberships map[string]entities.Membership // keyed userID + "/" + groupID
	assignments map[string]entities.RoleAssignment

	idempotency map[string]ports.IdempotencyRecord
}

func NewStore() *Store {
	return &Store{
		principals:  make(map[string]entities.Principal),
		groups:      make(map[string]entities.Group),
		memberships: make(map[string]entities.Membership),
		assignments: make(map[string]entities.RoleAssignment),
		idempotency: make(map[string]ports.IdempotencyRecord),
	}
}

func membershipKey(userID string, groupID string) string {
	return userID + "/" + groupID
}

func (s *Store) CreatePrincipal(_ context.Context, principal entities.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.principals[principal.UserID]; ok {
		return domainerrors.ErrPrincipalAlreadyExists
	}
	for _, existing := range s.principals {
		if existing.Email == principal.Email {
			return domainerrors.ErrPrincipalAlreadyExists
		}
	}
	s.principals[principal.UserID] = principal
	return nil
}

func (s *Store) GetPrincipal(_ context.Context, userID string) (entities.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	principal, ok := s.principals[userID]
	if !ok {
		return entities.Principal{}, domainerrors.ErrPrincipalNotFound
	}
	return principal, nil
}

func (s *Store) CreateGroup(_ context.Context, group entities.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[group.GroupID]; ok {
		return domainerrors.ErrGroupAlreadyExists
	}
	s.groups[group.GroupID] = group
	return nil
}

func (s *Store) GetGroup(_ context.Context, groupID string) (entities.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[groupID]
	if !ok {
		return entities.Group{}, domainerrors.ErrGroupNotFound
	}
	return group, nil
}

// UpsertMembership keeps exactly one row per (user, group); a re-enrollment
// updates the admin flag and status in place.
func (s *Store) UpsertMembership(_ context.Context, membership entities.Membership) (entities.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := membershipKey(membership.UserID, membership.GroupID)
	if existing, ok := s.memberships[key]; ok {
		existing.IsAdmin = membership.IsAdmin
		existing.Status = membership.Status
		existing.UpdatedAt = membership.UpdatedAt
		s.memberships[key] = existing
		return existing, nil
	}
	s.memberships[key] = membership
	return membership, nil
}

func (s *Store) AssignRole(_ context.Context, assignment entities.RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (s *Store) RolesOf(_ context.Context, userID string) ([]entities.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []entities.RoleAssignment
	for _, assignment := range s.assignments {
		if assignment.UserID == userID {
			items = append(items, assignment)
		}
	}
	return items, nil
}

func (s *Store) MembershipOf(_ context.Context, userID string, groupID string) (entities.Membership, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	membership, ok := s.memberships[membershipKey(userID, groupID)]
	if !ok {
		return entities.Membership{}, false, nil
	}
	return membership, true, nil
}

func (s *Store) Get(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.idempotency[key]
	if !ok {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.IsZero() && now.After(record.ExpiresAt) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Put(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
