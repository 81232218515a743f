package httptransport

import "time"

// RegisterPrincipalRequest is the request body for principal registration.
type RegisterPrincipalRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

type PrincipalResponse struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateGroupRequest struct {
	Name    string `json:"name"`
	Enabled *bool  `json:"enabled,omitempty"`
}

type GroupResponse struct {
	GroupID   string    `json:"group_id"`
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

type EnrollMemberRequest struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	Status  string `json:"status,omitempty"`
}

type MembershipResponse struct {
	MembershipID string    `json:"membership_id"`
	UserID       string    `json:"user_id"`
	GroupID      string    `json:"group_id"`
	IsAdmin      bool      `json:"is_admin"`
	Status       string    `json:"status"`
	JoinedAt     time.Time `json:"joined_at"`
}

type AssignRoleRequest struct {
	Role    string `json:"role"`
	GroupID string `json:"group_id,omitempty"`
}

type RoleAssignmentResponse struct {
	AssignmentID string    `json:"assignment_id"`
	UserID       string    `json:"user_id"`
	Role         string    `json:"role"`
	GroupID      string    `json:"group_id,omitempty"`
	AssignedBy   string    `json:"assigned_by,omitempty"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// AuthorityResponse is the resolved snapshot the UI feeds to the access guard.
type AuthorityResponse struct {
	UserID       string    `json:"user_id"`
	GroupID      string    `json:"group_id,omitempty"`
	Roles        []string  `json:"roles"`
	IsSuperAdmin bool      `json:"is_super_admin"`
	IsGroupAdmin bool      `json:"is_group_admin"`
	ResolvedAt   time.Time `json:"resolved_at"`
}

// ErrorResponse is the module error shape.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
