package entities

import "time"

// Group is one savings association; the tenant boundary for group-scoped
// authority.
type Group struct {
	GroupID   string    `json:"group_id"`
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}
