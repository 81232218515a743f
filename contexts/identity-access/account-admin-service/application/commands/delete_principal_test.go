package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "chama/contexts/identity-access/account-admin-service/domain/errors"
	"chama/contexts/identity-access/account-admin-service/ports"
)

type stubIdentity struct {
	callers     map[string]ports.Caller
	deleteErr   error
	deleteCalls []string
}

func (s *stubIdentity) VerifyToken(_ context.Context, token string) (ports.Caller, error) {
	caller, ok := s.callers[token]
	if !ok {
		return ports.Caller{}, errors.New("signature mismatch")
	}
	return caller, nil
}

func (s *stubIdentity) DeletePrincipal(_ context.Context, userID string) error {
	s.deleteCalls = append(s.deleteCalls, userID)
	return s.deleteErr
}

type stubAuthority struct {
	roles       map[string][]string
	memberships map[string]ports.MembershipGrant
	roleCalls   int
}

func membershipKey(userID string, groupID string) string {
	return userID + "/" + groupID
}

func (s *stubAuthority) RolesOf(_ context.Context, userID string) ([]string, error) {
	s.roleCalls++
	return s.roles[userID], nil
}

func (s *stubAuthority) ActiveMembership(_ context.Context, userID string, groupID string) (ports.MembershipGrant, bool, error) {
	grant, ok := s.memberships[membershipKey(userID, groupID)]
	return grant, ok, nil
}

type stubOutbox struct {
	appended  []ports.OutboxMessage
	appendErr error
}

func (s *stubOutbox) AppendOutbox(_ context.Context, message ports.OutboxMessage) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, message)
	return nil
}

func (s *stubOutbox) ListPendingOutbox(_ context.Context, _ int) ([]ports.OutboxMessage, error) {
	return append([]ports.OutboxMessage(nil), s.appended...), nil
}

func (s *stubOutbox) MarkOutboxPublished(_ context.Context, _ string, _ time.Time) error {
	return nil
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

type fixedIDs struct{ next string }

func (g fixedIDs) NewID(_ context.Context) (string, error) { return g.next, nil }

func newUseCase(identity *stubIdentity, authority *stubAuthority, outbox *stubOutbox) DeletePrincipalUseCase {
	uc := DeletePrincipalUseCase{
		Identity:      identity,
		Authority:     authority,
		Clock:         fixedClock{at: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)},
		IDGenerator:   fixedIDs{next: "outbox-1"},
		SourceService: "chama-api",
	}
	// Assign only a non-nil stub: a typed nil *stubOutbox wrapped in the
	// interface would defeat the use case's Outbox == nil guard.
	if outbox != nil {
		uc.Outbox = outbox
	}
	return uc
}

func TestDeletePrincipalMissingTokenIsTerminal(t *testing.T) {
	identity := &stubIdentity{}
	authority := &stubAuthority{}
	uc := newUseCase(identity, authority, nil)

	_, err := uc.Execute(context.Background(), DeletePrincipalCommand{
		Token:        "   ",
		TargetUserID: "u2",
	})
	if !errors.Is(err, domainerrors.ErrMissingAuthorization) {
		t.Fatalf("expected ErrMissingAuthorization, got %v", err)
	}
	if authority.roleCalls != 0 {
		t.Fatalf("expected no authority queries, got %d", authority.roleCalls)
	}
}

func TestDeletePrincipalInvalidTokenRejected(t *testing.T) {
	identity := &stubIdentity{callers: map[string]ports.Caller{}}
	uc := newUseCase(identity, &stubAuthority{}, nil)

	_, err := uc.Execute(context.Background(), DeletePrincipalCommand{
		Token:        "bogus",
		TargetUserID: "u2",
	})
	if !errors.Is(err, domainerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDeletePrincipalEmptySubjectRejected(t *testing.T) {
	identity := &stubIdentity{callers: map[string]ports.Caller{
		"tok": {UserID: "  "},
	}}
	uc := newUseCase(identity, &stubAuthority{}, nil)

	_, err := uc.Execute(context.Background(), DeletePrincipalCommand{
		Token:        "tok",
		TargetUserID: "u2",
	})
	if !errors.Is(err, domainerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestDeletePrincipalMissingTargetFailsBeforeAuthority(t *testing.T) {
	identity := &stubIdentity{callers: map[string]ports.Caller{
		"tok": {UserID: "admin-1"},
	}}
	authority := &stubAuthority{roles: map[string][]string{
		"admin-1": {ports.RoleSuperAdmin},
	}}
	uc := newUseCase(identity, authority, nil)

	_, err := uc.Execute(context.Background(), DeletePrincipalCommand{
		Token:        "tok",
		TargetUserID: "",
	})
	if !errors.Is(err, domainerrors.ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
	if authority.roleCalls != 0 {
		t.Fatalf("expected validation before role lookup, got %d lookups", authority.roleCalls)
	}
	if len(identity.deleteCalls) != 0 {
		t.Fatalf("expected no deletions, got %v", identity.deleteCalls)
	}
}

func TestDeletePrincipalSuperAdminBypassesGroupScope(t *testing.T) {
	identity := &stubIdentity{callers: map[string]ports.Caller{
		"tok": {UserID: "admin-1"},
	}}
	authority := &stubAuthority{roles: map[string][]string{
		"admin-1": {"member", ports.RoleSuperAdmin},
	}}
	outbox := &stubOutbox{}
	uc := newUseCase(identity, authority, outbox)

	result, err := uc.Execute(context.Background(), DeletePrincipalCommand{
		Token:        "tok",
		TargetUserID: "u2",
	})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if result.AuthorizedBy != AuthorizedByPlatformRole {
		t.Fatalf("expected platform_role basis, got %s", result.AuthorizedBy)
	}
	if len(identity.deleteCalls) != 1 || identity.deleteCalls[0] != "u2" {
		t.Fatalf("expected exactly one deletion of u2, got %v", identity.deleteCalls)
	}
	if len(outbox.appended) != 1 {
		t.Fatalf("expected one outbox row, got %d", len(outbox.appended))
	}
	if outbox.appended[0].EventType != "account.principal_deleted" {
		t.Fatalf("unexpected event type %s", outbox.appended[0].EventType)
	}
}

func TestDeletePrincipalActiveGroupAdminAuthorized(t *testing.T) {
	identity := &stubIdentity{callers: map[string]ports.Caller{
		"tok": {UserID: "admin-1"},
	}}
	authority := &stubAuthority{
		roles: map[string][]string{"admin-1": {"member"}},
		memberships: map[string]ports.MembershipGrant{
			membershipKey("admin-1", "G1"): {IsAdmin: true},
		},
	}
	uc := newUseCase(identity, authority, nil)

	result, err := uc.Execute(context.Background(), DeletePrincipalCommand{
		Token:        "tok",
		TargetUserID: "u2",
		GroupID:      "G1",
	})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if result.AuthorizedBy != AuthorizedByGroupMembership {
		t.Fatalf("expected group_membership basis, got %s", result.AuthorizedBy)
	}
}

func TestDeletePrincipalGroupAdminElsewhereDenied(t *testing.T) {
	identity := &stubIdentity{callers: map[string]ports.Caller{
		"tok": {UserID: "admin-1"},
	}}
	authority := &stubAuthority{
		memberships: map[string]ports.MembershipGrant{
			membershipKey("admin-1", "G2"): {IsAdmin: true},
		},
	}
	uc := newUseCase(identity, authority, nil)

	_, err := uc.Execute(context.Background(), DeletePrincipalCommand{
		Token:        "tok",
		TargetUserID: "u2",
		GroupID:      "G1",
	})
	if !errors.Is(err, domainerrors.ErrAdminPrivilegesRequired) {
		t.Fatalf("expected ErrAdminPrivilegesRequired, got %v", err)
	}
	if len(identity.deleteCalls) != 0 {
		t.Fatalf("expected no deletions, got %v", identity.deleteCalls)
	}
}

func TestDeletePrincipalGroupAdminWithoutScopeDenied(t *testing.T) {
	identity := &stubIdentity{callers: map[string]ports.Caller{
		"tok": {UserID: "admin-1"},
	}}
	authority := &stubAuthority{
		memberships: map[string]ports.MembershipGrant{
			membershipKey("admin-1", "G1"): {IsAdmin: true},
		},
	}
	uc := newUseCase(identity, authority, nil)

	// No groupId in the request: membership admin rights alone never apply.
	_, err := uc.Execute(context.Background(), DeletePrincipalCommand{
		Token:        "tok",
		TargetUserID: "u2",
	})
	if !errors.Is(err, domainerrors.ErrAdminPrivilegesRequired) {
		t.Fatalf("expected ErrAdminPrivilegesRequired, got %v", err)
	}
}

func TestDeletePrincipalProviderFailureWrapped(t *testing.T) {
	providerErr := errors.New("User not found")
	identity := &stubIdentity{
		callers:   map[string]ports.Caller{"tok": {UserID: "admin-1"}},
		deleteErr: providerErr,
	}
	authority := &stubAuthority{roles: map[string][]string{
		"admin-1": {ports.RoleSuperAdmin},
	}}
	uc := newUseCase(identity, authority, nil)

	_, err := uc.Execute(context.Background(), DeletePrincipalCommand{
		Token:        "tok",
		TargetUserID: "ghost",
	})
	if !errors.Is(err, domainerrors.ErrDeletionFailed) {
		t.Fatalf("expected deletion failure classification, got %v", err)
	}
	var failed *domainerrors.DeletionFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected DeletionFailedError, got %T", err)
	}
	if failed.ProviderMessage() != "User not found" {
		t.Fatalf("expected provider message preserved, got %q", failed.ProviderMessage())
	}
}

func TestDeletePrincipalOutboxFailureDoesNotFailDeletion(t *testing.T) {
	identity := &stubIdentity{callers: map[string]ports.Caller{
		"tok": {UserID: "admin-1"},
	}}
	authority := &stubAuthority{roles: map[string][]string{
		"admin-1": {ports.RoleSuperAdmin},
	}}
	outbox := &stubOutbox{appendErr: errors.New("outbox unavailable")}
	uc := newUseCase(identity, authority, outbox)

	result, err := uc.Execute(context.Background(), DeletePrincipalCommand{
		Token:        "tok",
		TargetUserID: "u2",
	})
	if err != nil {
		t.Fatalf("expected success despite outbox failure, got %v", err)
	}
	if result.UserID != "u2" || result.DeletedBy != "admin-1" {
		t.Fatalf("unexpected result %+v", result)
	}
}
