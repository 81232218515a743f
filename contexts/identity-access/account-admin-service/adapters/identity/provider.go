package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chama/contexts/identity-access/account-admin-service/ports"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Config holds the identity-provider settings injected at construction.
// Nothing here is read from ambient process state at call time.
type Config struct {
	TokenSecret string
	Issuer      string
}

// Provider is the self-hosted identity collaborator: HS256 session-token
// verification plus the cascading principal deletion.
type Provider struct {
	db     *gorm.DB
	secret []byte
	issuer string
	logger *slog.Logger
}

func NewProvider(db *gorm.DB, cfg Config, logger *slog.Logger) (*Provider, error) {
	if strings.TrimSpace(cfg.TokenSecret) == "" {
		return nil, errors.New("session token secret is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		db:     db,
		secret: []byte(cfg.TokenSecret),
		issuer: strings.TrimSpace(cfg.Issuer),
		logger: logger,
	}, nil
}

// VerifyToken validates the HS256 signature and standard claims, then
// confirms the subject still maps to a live principal row.
func (p *Provider) VerifyToken(ctx context.Context, token string) (ports.Caller, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		options = append(options, jwt.WithIssuer(p.issuer))
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, options...); err != nil {
		return ports.Caller{}, fmt.Errorf("parse session token: %w", err)
	}

	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return ports.Caller{}, errors.New("session token carries no subject")
	}

	var row principalRow
	if err := p.db.WithContext(ctx).
		Where("user_id = ?", subject).
		First(&row).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Caller{}, errors.New("token subject is not a registered principal")
		}
		return ports.Caller{}, err
	}

	return ports.Caller{
		UserID: row.UserID,
		Email:  row.Email,
	}, nil
}

// DeletePrincipal removes the principal and every dependent row in one
// transaction: contribution ledger entries, memberships, role assignments,
// then the principal/profile row itself. Any failure rolls the whole
// cascade back; no partial deletion is observable.
func (p *Provider) DeletePrincipal(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("user id is required")
	}

	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&contributionRow{}).Error; err != nil {
			return fmt.Errorf("delete contributions: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&membershipRow{}).Error; err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&roleAssignmentRow{}).Error; err != nil {
			return fmt.Errorf("delete role assignments: %w", err)
		}

		result := tx.Where("user_id = ?", userID).Delete(&principalRow{})
		if result.Error != nil {
			return fmt.Errorf("delete principal: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.New("principal not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.logger.Info("principal cascade deleted",
		"event", "identity_principal_deleted",
		"module", "identity-access/account-admin-service",
		"layer", "adapter",
		"user_id", userID,
	)
	return nil
}

// MintToken issues an HS256 session token for the principal. Used by local
// tooling and tests; production tokens come from the login flow.
func (p *Provider) MintToken(userID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if p.issuer != "" {
		claims["iss"] = p.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

type principalRow struct {
	UserID string `gorm:"column:user_id;primaryKey"`
	Email  string `gorm:"column:email"`
}

func (principalRow) TableName() string { return "principals" }

type membershipRow struct{}

func (membershipRow) TableName() string { return "group_memberships" }

type roleAssignmentRow struct{}

func (roleAssignmentRow) TableName() string { return "role_assignments" }

type contributionRow struct{}

func (contributionRow) TableName() string { return "contributions" }
