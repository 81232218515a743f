package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"chama/contexts/identity-access/account-admin-service/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository implements the authority-reader and outbox ports against the
// identity-access tables owned by member-directory-service. Reads are point
// queries with no caching layer in between.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) RolesOf(ctx context.Context, userID string) ([]string, error) {
	var rows []roleAssignmentRow
	if err := r.db.WithContext(ctx).
		Select("role").
		Where("user_id = ?", strings.TrimSpace(userID)).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	roles := make([]string, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.Role)
	}
	return roles, nil
}

func (r *Repository) ActiveMembership(ctx context.Context, userID string, groupID string) (ports.MembershipGrant, bool, error) {
	var row membershipRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ? AND status = ?",
			strings.TrimSpace(userID), strings.TrimSpace(groupID), "active").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.MembershipGrant{}, false, nil
		}
		return ports.MembershipGrant{}, false, err
	}
	return ports.MembershipGrant{IsAdmin: row.IsAdmin}, true, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	row := outboxModel{
		OutboxID:  strings.TrimSpace(message.OutboxID),
		EventType: strings.TrimSpace(message.EventType),
		Payload:   append([]byte(nil), message.Payload...),
		Status:    outboxStatusPending,
		CreatedAt: message.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outbox_id"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	at := publishedAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("outbox row not found")
	}
	return nil
}

type roleAssignmentRow struct {
	Role string `gorm:"column:role"`
}

func (roleAssignmentRow) TableName() string { return "role_assignments" }

type membershipRow struct {
	IsAdmin bool   `gorm:"column:is_admin"`
	Status  string `gorm:"column:status"`
}

func (membershipRow) TableName() string { return "group_memberships" }

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload;type:jsonb"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "account_admin_outbox" }
