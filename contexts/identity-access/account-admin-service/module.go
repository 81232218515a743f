package accountadmin

import (
	"log/slog"

	httpadapter "chama/contexts/identity-access/account-admin-service/adapters/http"
	"chama/contexts/identity-access/account-admin-service/adapters/memory"
	"chama/contexts/identity-access/account-admin-service/application/commands"
	"chama/contexts/identity-access/account-admin-service/application/workers"
	"chama/contexts/identity-access/account-admin-service/ports"
)

// Module is the account-admin composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Relay   workers.OutboxRelay
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Identity      ports.IdentityProvider
	Authority     ports.AuthorityReader
	Outbox        ports.OutboxRepository
	Publisher     ports.DeletionEventPublisher
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	SourceService string
	Logger        *slog.Logger
}

// NewModule wires the privileged deletion use case, transport handler, and
// outbox relay using explicit ports.
func NewModule(deps Dependencies) Module {
	deletePrincipal := commands.DeletePrincipalUseCase{
		Identity:      deps.Identity,
		Authority:     deps.Authority,
		Outbox:        deps.Outbox,
		Clock:         deps.Clock,
		IDGenerator:   deps.IDGenerator,
		SourceService: deps.SourceService,
		Logger:        deps.Logger,
	}

	module := Module{
		Handler: httpadapter.Handler{
			DeletePrincipal: deletePrincipal,
			Logger:          deps.Logger,
		},
	}
	if deps.Outbox != nil && deps.Publisher != nil {
		module.Relay = workers.OutboxRelay{
			Outbox:        deps.Outbox,
			Publisher:     deps.Publisher,
			Clock:         deps.Clock,
			SourceService: deps.SourceService,
			BatchSize:     100,
			Logger:        deps.Logger,
		}
	}
	return module
}

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Identity:      store,
		Authority:     store,
		Outbox:        store,
		Clock:         store,
		IDGenerator:   store,
		SourceService: "chama-api",
		Logger:        logger,
	})
	module.Store = store
	return module
}
