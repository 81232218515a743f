package accessguard

import (
	"log/slog"

	httpadapter "chama/contexts/identity-access/access-guard-service/adapters/http"
	"chama/contexts/identity-access/access-guard-service/application"
)

// Module is the access-guard composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Guard   application.Service
}

// Dependencies captures the redirect targets and logger used by the guard.
type Dependencies struct {
	LoginPath        string
	UnauthorizedPath string
	MemberHomePath   string
	Logger           *slog.Logger
}

// NewModule wires the guard service and its transport handler.
func NewModule(deps Dependencies) Module {
	guard := application.Service{
		LoginPath:        deps.LoginPath,
		UnauthorizedPath: deps.UnauthorizedPath,
		MemberHomePath:   deps.MemberHomePath,
	}
	return Module{
		Handler: httpadapter.Handler{
			Guard:  guard,
			Logger: deps.Logger,
		},
		Guard: guard,
	}
}
