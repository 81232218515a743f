package httpadapter

import (
	"context"
	"log/slog"

	"chama/contexts/identity-access/access-guard-service/application"
	"chama/contexts/identity-access/access-guard-service/domain"
	httptransport "chama/contexts/identity-access/access-guard-service/transport/http"
)

// Handler maps HTTP DTOs to guard evaluations.
type Handler struct {
	Guard  application.Service
	Logger *slog.Logger
}

// EvaluateHandler runs one guard evaluation for the supplied snapshot.
func (h Handler) EvaluateHandler(_ context.Context, request httptransport.EvaluateRequest) (httptransport.EvaluateResponse, error) {
	decision := h.Guard.Evaluate(
		domain.AuthState{
			Loading:       request.AuthState.Loading,
			Authenticated: request.AuthState.Authenticated,
			UserID:        request.AuthState.UserID,
			Roles:         request.AuthState.Roles,
			IsGroupAdmin:  request.AuthState.IsGroupAdmin,
			IsSuperAdmin:  request.AuthState.IsSuperAdmin,
		},
		domain.Requirement{
			RequiredRole:      request.Requirement.RequiredRole,
			RequireGroupAdmin: request.Requirement.RequireGroupAdmin,
		},
		request.RequestedPath,
	)

	if h.Logger != nil {
		h.Logger.Debug("guard decision evaluated",
			"event", "guard_http_evaluated",
			"module", "identity-access/access-guard-service",
			"layer", "transport",
			"user_id", request.AuthState.UserID,
			"outcome", string(decision.Outcome),
			"requested_path", request.RequestedPath,
		)
	}

	return httptransport.EvaluateResponse{
		Outcome:    string(decision.Outcome),
		RedirectTo: decision.RedirectTo,
		From:       decision.From,
	}, nil
}
