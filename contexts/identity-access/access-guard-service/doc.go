// Package accessguard implements the navigation gate for protected views.
//
// Layering:
// - domain: auth snapshot, requirement, and decision types
// - application: the pure decision function
// - adapters/transport: HTTP surface so the UI/BFF evaluates the same logic
//
// Boundary notes:
// - The guard is a UX gate, not a security boundary. It takes an
//   already-resolved authority snapshot as a value and never queries
//   collaborators itself; privileged mutations re-derive authority
//   server-side in account-admin-service.
package accessguard
