package httpadapter

import (
	"context"
	"log/slog"

	"chama/contexts/identity-access/member-directory-service/application"
	httptransport "chama/contexts/identity-access/member-directory-service/transport/http"
)

// Handler maps HTTP DTOs to roster commands and queries.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) RegisterPrincipalHandler(
	ctx context.Context,
	idempotencyKey string,
	request httptransport.RegisterPrincipalRequest,
) (httptransport.PrincipalResponse, error) {
	principal, err := h.Service.RegisterPrincipal(ctx, idempotencyKey, application.RegisterPrincipalInput{
		Email:       request.Email,
		DisplayName: request.DisplayName,
	})
	if err != nil {
		h.logFailure("directory_http_register_failed", err, "email", request.Email)
		return httptransport.PrincipalResponse{}, err
	}
	return httptransport.PrincipalResponse{
		UserID:      principal.UserID,
		Email:       principal.Email,
		DisplayName: principal.DisplayName,
		CreatedAt:   principal.CreatedAt,
	}, nil
}

func (h Handler) CreateGroupHandler(
	ctx context.Context,
	idempotencyKey string,
	request httptransport.CreateGroupRequest,
) (httptransport.GroupResponse, error) {
	group, err := h.Service.CreateGroup(ctx, idempotencyKey, application.CreateGroupInput{
		Name:    request.Name,
		Enabled: request.Enabled,
	})
	if err != nil {
		h.logFailure("directory_http_create_group_failed", err, "name", request.Name)
		return httptransport.GroupResponse{}, err
	}
	return httptransport.GroupResponse{
		GroupID:   group.GroupID,
		Name:      group.Name,
		Enabled:   group.Enabled,
		CreatedAt: group.CreatedAt,
	}, nil
}

func (h Handler) EnrollMemberHandler(
	ctx context.Context,
	groupID string,
	idempotencyKey string,
	request httptransport.EnrollMemberRequest,
) (httptransport.MembershipResponse, error) {
	membership, err := h.Service.EnrollMember(ctx, idempotencyKey, application.EnrollMemberInput{
		UserID:  request.UserID,
		GroupID: groupID,
		IsAdmin: request.IsAdmin,
		Status:  request.Status,
	})
	if err != nil {
		h.logFailure("directory_http_enroll_failed", err, "user_id", request.UserID, "group_id", groupID)
		return httptransport.MembershipResponse{}, err
	}
	return httptransport.MembershipResponse{
		MembershipID: membership.MembershipID,
		UserID:       membership.UserID,
		GroupID:      membership.GroupID,
		IsAdmin:      membership.IsAdmin,
		Status:       membership.Status,
		JoinedAt:     membership.JoinedAt,
	}, nil
}

func (h Handler) AssignRoleHandler(
	ctx context.Context,
	userID string,
	adminID string,
	idempotencyKey string,
	request httptransport.AssignRoleRequest,
) (httptransport.RoleAssignmentResponse, error) {
	assignment, err := h.Service.AssignRole(ctx, idempotencyKey, application.AssignRoleInput{
		UserID:     userID,
		Role:       request.Role,
		GroupID:    request.GroupID,
		AssignedBy: adminID,
	})
	if err != nil {
		h.logFailure("directory_http_assign_role_failed", err, "user_id", userID, "role", request.Role)
		return httptransport.RoleAssignmentResponse{}, err
	}
	return httptransport.RoleAssignmentResponse{
		AssignmentID: assignment.AssignmentID,
		UserID:       assignment.UserID,
		Role:         assignment.Role,
		GroupID:      assignment.GroupID,
		AssignedBy:   assignment.AssignedBy,
		AssignedAt:   assignment.AssignedAt,
	}, nil
}

func (h Handler) AuthorityHandler(
	ctx context.Context,
	userID string,
	groupID string,
) (httptransport.AuthorityResponse, error) {
	snapshot, err := h.Service.AuthoritySnapshot(ctx, userID, groupID)
	if err != nil {
		h.logFailure("directory_http_authority_failed", err, "user_id", userID, "group_id", groupID)
		return httptransport.AuthorityResponse{}, err
	}
	return httptransport.AuthorityResponse{
		UserID:       snapshot.UserID,
		GroupID:      snapshot.GroupID,
		Roles:        snapshot.Roles,
		IsSuperAdmin: snapshot.IsSuperAdmin,
		IsGroupAdmin: snapshot.IsGroupAdmin,
		ResolvedAt:   snapshot.ResolvedAt,
	}, nil
}

func (h Handler) logFailure(event string, err error, args ...any) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}
	fields := append([]any{
		"event", event,
		"module", "identity-access/member-directory-service",
		"layer", "transport",
		"error", err.Error(),
	}, args...)
	logger.Error("directory request failed", fields...)
}
