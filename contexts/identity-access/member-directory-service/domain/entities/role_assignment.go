package entities

import "time"

// RoleAssignment attaches a platform- or group-scoped role label to a
// principal. Role labels are not mutually exclusive.
type RoleAssignment struct {
	AssignmentID string    `json:"assignment_id"`
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	GroupID      string    `json:"group_id,omitempty"`
	AssignedBy   string    `json:"assigned_by"`
	AssignedAt   time.Time `json:"assigned_at"`
}
