package grant

import (
	"time"
)

// Stored statuses. Expired is never written to the store: it is derived
// from valid_to at read time so a stale row can never mask a revocation
// or resurrect a lapsed window.
const (
	StatusActive  = "active"
	StatusRevoked = "revoked"
	StatusExpired = "expired"
)

// Reason explains a failed scan or verification to the caller. Each reason
// maps to one distinct user-facing message; revoked grants deliberately
// report ReasonInvalid so revocation is indistinguishable from an unknown
// token to the scanning party.
type Reason string

const (
	ReasonInvalid      Reason = "invalid"
	ReasonNotYetValid  Reason = "not_yet_valid"
	ReasonExpired      Reason = "expired"
	ReasonCodeMismatch Reason = "code_mismatch"
)

// AccessGrant is a time-bounded access credential tying an auditor to a
// department for the duration of an audit. Identifiers and the token are
// immutable after creation; revocation is the only stored transition.
type AccessGrant struct {
	ID         string     `json:"id" gorm:"primaryKey;column:id"`
	AuditID    string     `json:"audit_id" gorm:"column:audit_id;not null;index:idx_grants_triple"`
	AuditorID  string     `json:"auditor_id" gorm:"column:auditor_id;not null;index:idx_grants_triple"`
	DeptID     string     `json:"dept_id" gorm:"column:dept_id;not null;index:idx_grants_triple"`
	Token      string     `json:"token" gorm:"column:token;uniqueIndex;not null"`
	VerifyCode *string    `json:"verify_code,omitempty" gorm:"column:verify_code"`
	ValidFrom  time.Time  `json:"valid_from" gorm:"column:valid_from;not null"`
	ValidTo    time.Time  `json:"valid_to" gorm:"column:valid_to;not null"`
	Status     string     `json:"status" gorm:"column:status;default:active"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty" gorm:"column:revoked_at"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (AccessGrant) TableName() string {
	return "access_grants"
}

// RequiresVerifyCode reports whether the department was sensitive at
// issuance time. Sensitivity is never re-evaluated after issuance.
func (g *AccessGrant) RequiresVerifyCode() bool {
	return g.VerifyCode != nil && *g.VerifyCode != ""
}

func (g *AccessGrant) IsRevoked() bool {
	return g.Status == StatusRevoked
}

// EffectiveStatus computes the status as of now. Revoked is terminal and
// overrides the computed expiry.
func (g *AccessGrant) EffectiveStatus(now time.Time) string {
	if g.IsRevoked() {
		return StatusRevoked
	}
	if now.After(g.ValidTo) {
		return StatusExpired
	}
	return StatusActive
}

// Evaluate runs the scan decision against a grant at a given instant.
// Rules apply in order, first match wins. The window is inclusive on both
// ends: a grant whose valid_to equals now is still valid.
func Evaluate(g *AccessGrant, now time.Time) *ScanResult {
	if g == nil || g.IsRevoked() {
		return &ScanResult{IsValid: false, Reason: ReasonInvalid}
	}
	if now.Before(g.ValidFrom) {
		return &ScanResult{IsValid: false, Reason: ReasonNotYetValid}
	}
	if now.After(g.ValidTo) {
		return &ScanResult{IsValid: false, Reason: ReasonExpired}
	}

	expiresAt := g.ValidTo
	result := &ScanResult{
		IsValid:      true,
		AuditID:      g.AuditID,
		AuditorID:    g.AuditorID,
		DeptID:       g.DeptID,
		ExpiresAt:    &expiresAt,
		RequiresCode: g.RequiresVerifyCode(),
	}
	if g.RequiresVerifyCode() {
		result.VerifyCode = *g.VerifyCode
	}
	return result
}
