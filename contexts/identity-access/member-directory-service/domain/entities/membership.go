package entities

import "time"

// Membership ties a principal to a group. Group-scoped authority is derived
// from the IsAdmin flag only while Status is active.
type Membership struct {
	MembershipID string    `json:"membership_id"`
	UserID       string    `json:"user_id"`
	GroupID      string    `json:"group_id"`
	IsAdmin      bool      `json:"is_admin"`
	Status       string    `json:"status"`
	JoinedAt     time.Time `json:"joined_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
