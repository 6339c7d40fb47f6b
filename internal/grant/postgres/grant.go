package postgres

import (
	"errors"
	"time"

	"github.com/Danhnam1/Audit-System-sub000/internal"
	"github.com/Danhnam1/Audit-System-sub000/internal/grant"
	"gorm.io/gorm"
)

// GrantRepository implements the grant.Repository interface using GORM.
type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) grant.Repository {
	return &GrantRepository{db: db}
}

// Create stores a freshly issued grant. The token column carries a unique
// index; a collision surfaces as ErrDuplicateToken so the issuer can
// regenerate.
func (r *GrantRepository) Create(g *grant.AccessGrant) error {
	err := r.db.Create(g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrDuplicateToken
		}
		return err
	}
	return nil
}

func (r *GrantRepository) GetByID(id string) (*grant.AccessGrant, error) {
	var g grant.AccessGrant
	err := r.db.Where("id = ?", id).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrGrantNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *GrantRepository) GetByToken(token string) (*grant.AccessGrant, error) {
	var g grant.AccessGrant
	err := r.db.Where("token = ?", token).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrGrantNotFound
		}
		return nil, err
	}
	return &g, nil
}

// List returns grants newest first so callers can treat the most recent
// grant for a triple as authoritative.
func (r *GrantRepository) List(filter grant.ListFilter) ([]*grant.AccessGrant, error) {
	q := r.db.Model(&grant.AccessGrant{})

	if filter.AuditID != "" {
		q = q.Where("audit_id = ?", filter.AuditID)
	}
	if filter.AuditorID != "" {
		q = q.Where("auditor_id = ?", filter.AuditorID)
	}
	if filter.DeptID != "" {
		q = q.Where("dept_id = ?", filter.DeptID)
	}

	var grants []*grant.AccessGrant
	err := q.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&grants).Error
	return grants, err
}

// Revoke marks a grant revoked in a single conditional update, so an
// in-flight scan sees the grant either active or revoked, never torn.
// Updating an already-revoked grant matches zero rows and changes nothing.
func (r *GrantRepository) Revoke(id string, revokedAt time.Time) error {
	res := r.db.Model(&grant.AccessGrant{}).
		Where("id = ? AND status <> ?", id, grant.StatusRevoked).
		Updates(map[string]interface{}{
			"status":     grant.StatusRevoked,
			"revoked_at": revokedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either missing or already revoked; distinguish for the caller.
		var count int64
		if err := r.db.Model(&grant.AccessGrant{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return internal.ErrGrantNotFound
		}
	}
	return nil
}
