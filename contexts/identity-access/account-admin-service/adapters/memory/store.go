package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"chama/contexts/identity-access/account-admin-service/ports"

	"github.com/google/uuid"
)

const membershipStatusActive = "active"

// Store is an in-memory adapter implementing the identity-provider,
// authority-reader, and outbox ports. It is intended for tests and local
// development wiring.
type Store struct {
	mu sync.RWMutex

	tokens      map[string]ports.Caller
	principals  map[string]struct{}
	roles       map[string][]string
	memberships map[string]membershipRow // keyed userID + "/" + groupID

	deleteCalls []string
	deleteErr   error

	outbox map[string]outboxRow
}

type membershipRow struct {
	IsAdmin bool
	Status  string
}

type outboxRow struct {
	ports.OutboxMessage
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		tokens:      make(map[string]ports.Caller),
		principals:  make(map[string]struct{}),
		roles:       make(map[string][]string),
		memberships: make(map[string]membershipRow),
		outbox:      make(map[string]outboxRow),
	}
}

func membershipKey(userID string, groupID string) string {
	return userID + "/" + groupID
}

// SeedPrincipal registers a principal row the provider can delete.
func (s *Store) SeedPrincipal(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[userID] = struct{}{}
}

// SeedToken maps a raw bearer token to its resolved caller.
func (s *Store) SeedToken(token string, caller ports.Caller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = caller
	s.principals[caller.UserID] = struct{}{}
}

// SeedRole attaches a platform role row to a principal.
func (s *Store) SeedRole(userID string, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[userID] = append(s.roles[userID], role)
}

// SeedMembership attaches a membership row with the given flags.
func (s *Store) SeedMembership(userID string, groupID string, isAdmin bool, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships[membershipKey(userID, groupID)] = membershipRow{
		IsAdmin: isAdmin,
		Status:  status,
	}
}

// FailDeletions makes DeletePrincipal return the supplied error, simulating
// a provider-side failure.
func (s *Store) FailDeletions(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

// DeleteCalls returns the target ids passed to DeletePrincipal, in order.
func (s *Store) DeleteCalls() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.deleteCalls...)
}

func (s *Store) VerifyToken(_ context.Context, token string) (ports.Caller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	caller, ok := s.tokens[token]
	if !ok {
		return ports.Caller{}, errors.New("token not recognized")
	}
	return caller, nil
}

func (s *Store) DeletePrincipal(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteCalls = append(s.deleteCalls, userID)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.principals[userID]; !ok {
		return errors.New("principal not found")
	}

	delete(s.principals, userID)
	delete(s.roles, userID)
	for key := range s.memberships {
		if len(key) > len(userID) && key[:len(userID)+1] == userID+"/" {
			delete(s.memberships, key)
		}
	}
	for token, caller := range s.tokens {
		if caller.UserID == userID {
			delete(s.tokens, token)
		}
	}
	return nil
}

func (s *Store) RolesOf(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.roles[userID]...), nil
}

func (s *Store) ActiveMembership(_ context.Context, userID string, groupID string) (ports.MembershipGrant, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.memberships[membershipKey(userID, groupID)]
	if !ok || row.Status != membershipStatusActive {
		return ports.MembershipGrant{}, false, nil
	}
	return ports.MembershipGrant{IsAdmin: row.IsAdmin}, true, nil
}

func (s *Store) AppendOutbox(_ context.Context, message ports.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.OutboxID == "" {
		message.OutboxID = uuid.NewString()
	}
	s.outbox[message.OutboxID] = outboxRow{OutboxMessage: message}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []ports.OutboxMessage
	for _, row := range s.outbox {
		if row.PublishedAt == nil {
			items = append(items, row.OutboxMessage)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[outboxID]
	if !ok {
		return errors.New("outbox row not found")
	}
	at := publishedAt.UTC()
	row.PublishedAt = &at
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
