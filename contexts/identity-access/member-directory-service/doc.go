// Package memberdirectory owns the identity-access roster: principals,
// savings groups, group memberships, and platform role assignments.
//
// Layering:
// - domain: entities and errors
// - application: idempotent roster commands and authority snapshot query
// - ports: persistence/idempotency/clock boundaries
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - This module is the source of truth the account-admin authorizer
//   re-derives caller authority from. Authority is never cached here.
package memberdirectory
