package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"chama/contexts/identity-access/member-directory-service/domain/entities"
	domainerrors "chama/contexts/identity-access/member-directory-service/domain/errors"
	"chama/contexts/identity-access/member-directory-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

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

func (r *Repository) CreatePrincipal(ctx context.Context, principal entities.Principal) error {
	row := principalModel{
		UserID:      strings.TrimSpace(principal.UserID),
		Email:       strings.TrimSpace(principal.Email),
		DisplayName: strings.TrimSpace(principal.DisplayName),
		CreatedAt:   principal.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrPrincipalAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repository) GetPrincipal(ctx context.Context, userID string) (entities.Principal, error) {
	var row principalModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Principal{}, domainerrors.ErrPrincipalNotFound
		}
		return entities.Principal{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) CreateGroup(ctx context.Context, group entities.Group) error {
	row := groupModel{
		GroupID:   strings.TrimSpace(group.GroupID),
		Name:      strings.TrimSpace(group.Name),
		Enabled:   group.Enabled,
		CreatedAt: group.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrGroupAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repository) GetGroup(ctx context.Context, groupID string) (entities.Group, error) {
	var row groupModel
	err := r.db.WithContext(ctx).
		Where("group_id = ?", strings.TrimSpace(groupID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Group{}, domainerrors.ErrGroupNotFound
		}
		return entities.Group{}, err
	}
	return row.toEntity(), nil
}

// UpsertMembership relies on the (user_id, group_id) unique index so exactly
// one membership row exists per principal per group.
func (r *Repository) UpsertMembership(ctx context.Context, membership entities.Membership) (entities.Membership, error) {
	row := membershipModel{
		MembershipID: strings.TrimSpace(membership.MembershipID),
		UserID:       strings.TrimSpace(membership.UserID),
		GroupID:      strings.TrimSpace(membership.GroupID),
		IsAdmin:      membership.IsAdmin,
		Status:       membership.Status,
		JoinedAt:     membership.JoinedAt.UTC(),
		UpdatedAt:    membership.UpdatedAt.UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "group_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_admin", "status", "updated_at"}),
		}).
		Create(&row).
		Error
	if err != nil {
		return entities.Membership{}, err
	}

	var stored membershipModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", row.UserID, row.GroupID).
		First(&stored).
		Error; err != nil {
		return entities.Membership{}, err
	}
	return stored.toEntity(), nil
}

func (r *Repository) AssignRole(ctx context.Context, assignment entities.RoleAssignment) error {
	row := roleAssignmentModel{
		AssignmentID: strings.TrimSpace(assignment.AssignmentID),
		UserID:       strings.TrimSpace(assignment.UserID),
		Role:         strings.TrimSpace(assignment.Role),
		GroupID:      strings.TrimSpace(assignment.GroupID),
		AssignedBy:   strings.TrimSpace(assignment.AssignedBy),
		AssignedAt:   assignment.AssignedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidRequest
		}
		return err
	}
	return nil
}

func (r *Repository) RolesOf(ctx context.Context, userID string) ([]entities.RoleAssignment, error) {
	var rows []roleAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("assigned_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.RoleAssignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) MembershipOf(ctx context.Context, userID string, groupID string) (entities.Membership, bool, error) {
	var row membershipModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND group_id = ?", strings.TrimSpace(userID), strings.TrimSpace(groupID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Membership{}, false, nil
		}
		return entities.Membership{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) Get(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	var row idempotencyModel
	err := r.db.WithContext(ctx).
		Where("key = ?", strings.TrimSpace(key)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}

	if !row.ExpiresAt.IsZero() && now.UTC().After(row.ExpiresAt.UTC()) {
		if err := r.db.WithContext(ctx).
			Where("key = ?", strings.TrimSpace(key)).
			Delete(&idempotencyModel{}).
			Error; err != nil {
			return ports.IdempotencyRecord{}, false, err
		}
		return ports.IdempotencyRecord{}, false, nil
	}

	return ports.IdempotencyRecord{
		Key:         row.Key,
		RequestHash: row.RequestHash,
		Payload:     append([]byte(nil), row.Payload...),
		ExpiresAt:   row.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) Put(ctx context.Context, record ports.IdempotencyRecord) error {
	row := idempotencyModel{
		Key:         strings.TrimSpace(record.Key),
		RequestHash: record.RequestHash,
		Payload:     append([]byte(nil), record.Payload...),
		ExpiresAt:   record.ExpiresAt.UTC(),
	}
	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return nil
	}

	var existing idempotencyModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", row.Key).
		First(&existing).
		Error; err != nil {
		return err
	}
	if existing.RequestHash != row.RequestHash {
		return domainerrors.ErrIdempotencyConflict
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
