package postgresadapter

import (
	"time"

	"chama/contexts/identity-access/member-directory-service/domain/entities"
)

type principalModel struct {
	UserID      string    `gorm:"column:user_id;primaryKey"`
	Email       string    `gorm:"column:email;uniqueIndex"`
	DisplayName string    `gorm:"column:display_name"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (principalModel) TableName() string { return "principals" }

func (m principalModel) toEntity() entities.Principal {
	return entities.Principal{
		UserID:      m.UserID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

type groupModel struct {
	GroupID   string    `gorm:"column:group_id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Enabled   bool      `gorm:"column:enabled"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (groupModel) TableName() string { return "savings_groups" }

func (m groupModel) toEntity() entities.Group {
	return entities.Group{
		GroupID:   m.GroupID,
		Name:      m.Name,
		Enabled:   m.Enabled,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type membershipModel struct {
	MembershipID string    `gorm:"column:membership_id;primaryKey"`
	UserID       string    `gorm:"column:user_id;uniqueIndex:idx_membership_user_group"`
	GroupID      string    `gorm:"column:group_id;uniqueIndex:idx_membership_user_group"`
	IsAdmin      bool      `gorm:"column:is_admin"`
	Status       string    `gorm:"column:status"`
	JoinedAt     time.Time `gorm:"column:joined_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (membershipModel) TableName() string { return "group_memberships" }

func (m membershipModel) toEntity() entities.Membership {
	return entities.Membership{
		MembershipID: m.MembershipID,
		UserID:       m.UserID,
		GroupID:      m.GroupID,
		IsAdmin:      m.IsAdmin,
		Status:       m.Status,
		JoinedAt:     m.JoinedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type roleAssignmentModel struct {
	AssignmentID string    `gorm:"column:assignment_id;primaryKey"`
	UserID       string    `gorm:"column:user_id;index"`
	Role         string    `gorm:"column:role"`
	GroupID      string    `gorm:"column:group_id"`
	AssignedBy   string    `gorm:"column:assigned_by"`
	AssignedAt   time.Time `gorm:"column:assigned_at"`
}

func (roleAssignmentModel) TableName() string { return "role_assignments" }

func (m roleAssignmentModel) toEntity() entities.RoleAssignment {
	return entities.RoleAssignment{
		AssignmentID: m.AssignmentID,
		UserID:       m.UserID,
		Role:         m.Role,
		GroupID:      m.GroupID,
		AssignedBy:   m.AssignedBy,
		AssignedAt:   m.AssignedAt.UTC(),
	}
}

type idempotencyModel struct {
	Key         string    `gorm:"column:key;primaryKey"`
	RequestHash string    `gorm:"column:request_hash"`
	Payload     []byte    `gorm:"column:payload;type:jsonb"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string { return "directory_idempotency" }
