// Package accountadmin implements privileged principal administration.
//
// Layering:
// - domain: error taxonomy for the privileged path
// - application: the delete-principal use case and outbox relay worker
// - ports: identity provider, authority reader, and outbox boundaries
// - adapters: HTTP, memory, postgres, and identity-provider implementations
// - transport: module-private DTOs matching the public wire contract
//
// Boundary notes:
// - Caller authority is always re-derived from source-of-truth rows; any
//   role or admin flag asserted by the client is ignored.
// - Deletion is irreversible and never retried here. A timed-out provider
//   call is a failure of unknown final state and is reported as such.
package accountadmin
