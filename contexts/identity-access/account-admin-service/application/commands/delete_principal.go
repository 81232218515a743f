package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "chama/contexts/identity-access/account-admin-service/application"
	domainerrors "chama/contexts/identity-access/account-admin-service/domain/errors"
	"chama/contexts/identity-access/account-admin-service/ports"
)

const (
	AuthorizedByPlatformRole    = "platform_role"
	AuthorizedByGroupMembership = "group_membership"

	eventTypePrincipalDeleted = "account.principal_deleted"
)

// DeletePrincipalCommand contains transport-agnostic input for principal
// deletion. Token is the raw bearer credential; GroupID is the optional
// scope the caller claims group-admin authority over.
type DeletePrincipalCommand struct {
	Token        string
	TargetUserID string
	GroupID      string
}

// DeletePrincipalResult records the outcome of a completed deletion.
type DeletePrincipalResult struct {
	UserID       string    `json:"user_id"`
	DeletedBy    string    `json:"deleted_by"`
	AuthorizedBy string    `json:"authorized_by"`
	DeletedAt    time.Time `json:"deleted_at"`
}

// DeletePrincipalUseCase authorizes and executes the irreversible principal
// deletion. Each step is a terminal exit point; no partial effect is ever
// observable before step 6, and step 6 itself is atomic at the provider.
type DeletePrincipalUseCase struct {
	Identity      ports.IdentityProvider
	Authority     ports.AuthorityReader
	Outbox        ports.OutboxRepository
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	SourceService string
	Logger        *slog.Logger
}

// Execute runs the authorization pipeline and, on success, the provider's
// cascading deletion. Caller authority is re-derived from role and
// membership rows; nothing asserted by the client is trusted.
func (u DeletePrincipalUseCase) Execute(ctx context.Context, cmd DeletePrincipalCommand) (DeletePrincipalResult, error) {
	logger := application.ResolveLogger(u.Logger)

	token := strings.TrimSpace(cmd.Token)
	if token == "" {
		return DeletePrincipalResult{}, domainerrors.ErrMissingAuthorization
	}

	caller, err := u.Identity.VerifyToken(ctx, token)
	if err != nil || strings.TrimSpace(caller.UserID) == "" {
		if err != nil {
			logger.Warn("delete principal token rejected",
				"event", "account_delete_token_rejected",
				"module", "identity-access/account-admin-service",
				"layer", "application",
				"error", err.Error(),
			)
		}
		return DeletePrincipalResult{}, domainerrors.ErrInvalidToken
	}

	target := strings.TrimSpace(cmd.TargetUserID)
	if target == "" {
		// Fail fast: no role/membership queries for a malformed request.
		return DeletePrincipalResult{}, domainerrors.ErrUserIDRequired
	}

	groupID := strings.TrimSpace(cmd.GroupID)
	authorizedBy, err := u.resolveAuthority(ctx, caller.UserID, groupID)
	if err != nil {
		logger.Error("delete principal authority lookup failed",
			"event", "account_delete_authority_lookup_failed",
			"module", "identity-access/account-admin-service",
			"layer", "application",
			"caller_id", caller.UserID,
			"group_id", groupID,
			"error", err.Error(),
		)
		return DeletePrincipalResult{}, err
	}
	if authorizedBy == "" {
		logger.Warn("delete principal denied",
			"event", "account_delete_denied",
			"module", "identity-access/account-admin-service",
			"layer", "application",
			"caller_id", caller.UserID,
			"group_id", groupID,
		)
		return DeletePrincipalResult{}, domainerrors.ErrAdminPrivilegesRequired
	}

	if err := u.Identity.DeletePrincipal(ctx, target); err != nil {
		logger.Error("delete principal provider failed",
			"event", "account_delete_provider_failed",
			"module", "identity-access/account-admin-service",
			"layer", "application",
			"caller_id", caller.UserID,
			"target_id", target,
			"error", err.Error(),
		)
		return DeletePrincipalResult{}, &domainerrors.DeletionFailedError{Err: err}
	}

	result := DeletePrincipalResult{
		UserID:       target,
		DeletedBy:    caller.UserID,
		AuthorizedBy: authorizedBy,
		DeletedAt:    u.now(),
	}
	u.appendDeletionEvent(ctx, result, groupID)

	logger.Info("delete principal completed",
		"event", "account_delete_completed",
		"module", "identity-access/account-admin-service",
		"layer", "application",
		"caller_id", caller.UserID,
		"target_id", target,
		"authorized_by", authorizedBy,
	)
	return result, nil
}

// resolveAuthority returns the basis for authorization, or "" when the
// caller holds neither a super_admin role nor an active admin membership in
// the target group. Group scoping is strict: without an explicit groupID,
// group-admin authority elsewhere authorizes nothing.
func (u DeletePrincipalUseCase) resolveAuthority(ctx context.Context, callerID string, groupID string) (string, error) {
	roles, err := u.Authority.RolesOf(ctx, callerID)
	if err != nil {
		return "", err
	}
	for _, role := range roles {
		if role == ports.RoleSuperAdmin {
			return AuthorizedByPlatformRole, nil
		}
	}

	if groupID == "" {
		return "", nil
	}

	grant, found, err := u.Authority.ActiveMembership(ctx, callerID, groupID)
	if err != nil {
		return "", err
	}
	if found && grant.IsAdmin {
		return AuthorizedByGroupMembership, nil
	}
	return "", nil
}

// appendDeletionEvent is best-effort: the deletion already happened and its
// outcome must be reported regardless of outbox health.
func (u DeletePrincipalUseCase) appendDeletionEvent(ctx context.Context, result DeletePrincipalResult, groupID string) {
	if u.Outbox == nil {
		return
	}
	logger := application.ResolveLogger(u.Logger)

	outboxID := ""
	if u.IDGenerator != nil {
		id, err := u.IDGenerator.NewID(ctx)
		if err != nil {
			logger.Warn("deletion event id generation failed",
				"event", "account_delete_outbox_id_failed",
				"module", "identity-access/account-admin-service",
				"layer", "application",
				"target_id", result.UserID,
				"error", err.Error(),
			)
			return
		}
		outboxID = id
	}

	payload, err := json.Marshal(struct {
		DeletePrincipalResult
		GroupID string `json:"group_id,omitempty"`
	}{result, groupID})
	if err != nil {
		return
	}

	message := ports.OutboxMessage{
		OutboxID:  outboxID,
		EventType: eventTypePrincipalDeleted,
		Payload:   payload,
		CreatedAt: result.DeletedAt,
	}
	if err := u.Outbox.AppendOutbox(ctx, message); err != nil {
		logger.Warn("deletion event append failed",
			"event", "account_delete_outbox_append_failed",
			"module", "identity-access/account-admin-service",
			"layer", "application",
			"target_id", result.UserID,
			"error", err.Error(),
		)
	}
}

func (u DeletePrincipalUseCase) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
