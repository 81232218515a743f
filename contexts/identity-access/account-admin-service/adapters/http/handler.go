package httpadapter

import (
	"context"
	"log/slog"

	application "chama/contexts/identity-access/account-admin-service/application"
	"chama/contexts/identity-access/account-admin-service/application/commands"
	httptransport "chama/contexts/identity-access/account-admin-service/transport/http"
)

// Handler maps HTTP DTOs to the privileged deletion command.
type Handler struct {
	DeletePrincipal commands.DeletePrincipalUseCase
	Logger          *slog.Logger
}

// DeleteUserHandler executes an authorized principal deletion. The bearer
// token travels as-is; authority is re-derived inside the use case.
func (h Handler) DeleteUserHandler(
	ctx context.Context,
	bearerToken string,
	request httptransport.DeleteUserRequest,
) (httptransport.DeleteUserResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("http delete user received",
		"event", "account_http_delete_received",
		"module", "identity-access/account-admin-service",
		"layer", "transport",
		"target_id", request.UserID,
		"group_id", request.GroupID,
	)

	_, err := h.DeletePrincipal.Execute(ctx, commands.DeletePrincipalCommand{
		Token:        bearerToken,
		TargetUserID: request.UserID,
		GroupID:      request.GroupID,
	})
	if err != nil {
		logger.Error("http delete user failed",
			"event", "account_http_delete_failed",
			"module", "identity-access/account-admin-service",
			"layer", "transport",
			"target_id", request.UserID,
			"group_id", request.GroupID,
			"error", err.Error(),
		)
		return httptransport.DeleteUserResponse{}, err
	}
	return httptransport.DeleteUserResponse{Success: true}, nil
}
