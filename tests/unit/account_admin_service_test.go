package unit

import (
	"context"
	"errors"
	"testing"

	accountadmin "chama/contexts/identity-access/account-admin-service"
	domainerrors "chama/contexts/identity-access/account-admin-service/domain/errors"
	"chama/contexts/identity-access/account-admin-service/ports"
	httptransport "chama/contexts/identity-access/account-admin-service/transport/http"
)

func seedAccountModule() accountadmin.Module {
	module := accountadmin.NewInMemoryModule(nil)
	module.Store.SeedPrincipal("target-1")
	module.Store.SeedPrincipal("root-1")
	module.Store.SeedPrincipal("chair-1")
	module.Store.SeedPrincipal("member-1")
	module.Store.SeedToken("tok-root", ports.Caller{UserID: "root-1"})
	module.Store.SeedToken("tok-chair", ports.Caller{UserID: "chair-1"})
	module.Store.SeedToken("tok-member", ports.Caller{UserID: "member-1"})
	module.Store.SeedRole("root-1", "super_admin")
	module.Store.SeedMembership("chair-1", "G1", true, "active")
	module.Store.SeedMembership("member-1", "G1", false, "active")
	return module
}

func TestAccountAdminSuperAdminDeletesWithoutGroupScope(t *testing.T) {
	module := seedAccountModule()

	resp, err := module.Handler.DeleteUserHandler(context.Background(), "tok-root", httptransport.DeleteUserRequest{
		UserID: "target-1",
	})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success response")
	}
	if calls := module.Store.DeleteCalls(); len(calls) != 1 || calls[0] != "target-1" {
		t.Fatalf("expected exactly one provider deletion, got %v", calls)
	}
}

func TestAccountAdminGroupAdminScopedToOwnGroup(t *testing.T) {
	module := seedAccountModule()

	if _, err := module.Handler.DeleteUserHandler(context.Background(), "tok-chair", httptransport.DeleteUserRequest{
		UserID:  "target-1",
		GroupID: "G1",
	}); err != nil {
		t.Fatalf("delete in own group failed: %v", err)
	}

	_, err := module.Handler.DeleteUserHandler(context.Background(), "tok-chair", httptransport.DeleteUserRequest{
		UserID:  "member-1",
		GroupID: "G2",
	})
	if !errors.Is(err, domainerrors.ErrAdminPrivilegesRequired) {
		t.Fatalf("expected denial outside admin group, got %v", err)
	}
}

func TestAccountAdminPlainMemberDenied(t *testing.T) {
	module := seedAccountModule()

	_, err := module.Handler.DeleteUserHandler(context.Background(), "tok-member", httptransport.DeleteUserRequest{
		UserID:  "target-1",
		GroupID: "G1",
	})
	if !errors.Is(err, domainerrors.ErrAdminPrivilegesRequired) {
		t.Fatalf("expected ErrAdminPrivilegesRequired, got %v", err)
	}
	if calls := module.Store.DeleteCalls(); len(calls) != 0 {
		t.Fatalf("expected no deletions, got %v", calls)
	}
}

func TestAccountAdminDeletionAppendsOutboxEvent(t *testing.T) {
	module := seedAccountModule()

	if _, err := module.Handler.DeleteUserHandler(context.Background(), "tok-root", httptransport.DeleteUserRequest{
		UserID: "target-1",
	}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	pending, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("outbox list failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending deletion event, got %d", len(pending))
	}
	if pending[0].EventType != "account.principal_deleted" {
		t.Fatalf("unexpected event type %s", pending[0].EventType)
	}
}

func TestAccountAdminProviderFailureClassified(t *testing.T) {
	module := seedAccountModule()
	module.Store.FailDeletions(errors.New("connection reset"))

	_, err := module.Handler.DeleteUserHandler(context.Background(), "tok-root", httptransport.DeleteUserRequest{
		UserID: "target-1",
	})
	if !errors.Is(err, domainerrors.ErrDeletionFailed) {
		t.Fatalf("expected deletion failure classification, got %v", err)
	}
}
