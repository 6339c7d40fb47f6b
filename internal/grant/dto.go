package grant

import (
	"time"

	"github.com/Danhnam1/Audit-System-sub000/internal"
	"github.com/Danhnam1/Audit-System-sub000/internal/core/common/validation"
)

// IssueGrantDTO is the request payload for issuing a new access grant.
// TTLMinutes, when supplied, takes precedence over an explicit ValidTo;
// when both are absent the issuer applies its configured default TTL.
type IssueGrantDTO struct {
	AuditID    string    `json:"audit_id"`
	AuditorID  string    `json:"auditor_id"`
	DeptID     string    `json:"dept_id"`
	ValidFrom  time.Time `json:"valid_from"`
	ValidTo    time.Time `json:"valid_to"`
	TTLMinutes int       `json:"ttl_minutes,omitempty"`
}

func (dto *IssueGrantDTO) Validate() error {
	if err := validation.NewValidator().
		Require("audit_id", dto.AuditID).
		Require("auditor_id", dto.AuditorID).
		Require("dept_id", dto.DeptID).
		RequireTime("valid_from", dto.ValidFrom).
		Validate(); err != nil {
		return err
	}

	if dto.TTLMinutes < 0 {
		return internal.NewValidationFieldError("ttl_minutes", "ttl_minutes cannot be negative", internal.ErrCodeInvalidTimeWindow)
	}

	if dto.TTLMinutes == 0 && !dto.ValidTo.IsZero() && !dto.ValidFrom.Before(dto.ValidTo) {
		return internal.NewValidationError("valid_from must be before valid_to", internal.ErrCodeInvalidTimeWindow)
	}

	return nil
}

// Window resolves the effective validity window, applying the TTL override.
func (dto *IssueGrantDTO) Window() (time.Time, time.Time) {
	if dto.TTLMinutes > 0 {
		return dto.ValidFrom, dto.ValidFrom.Add(time.Duration(dto.TTLMinutes) * time.Minute)
	}
	return dto.ValidFrom, dto.ValidTo
}

type ScanDTO struct {
	Token string `json:"token"`
}

func (dto *ScanDTO) Validate() error {
	return validation.NewValidator().
		Require("token", dto.Token).
		Validate()
}

type VerifyCodeDTO struct {
	Token string `json:"token"`
	Code  string `json:"code"`
}

func (dto *VerifyCodeDTO) Validate() error {
	return validation.NewValidator().
		Require("token", dto.Token).
		Require("code", dto.Code).
		Validate()
}

// ScanResult is the structured outcome of presenting a token. A failed scan
// is a routine business event, not an error: the reason tells the credential
// holder what corrective action to take. VerifyCode is populated only on the
// valid branch and only for grants that carry one.
type ScanResult struct {
	IsValid      bool       `json:"is_valid"`
	Reason       Reason     `json:"reason,omitempty"`
	AuditID      string     `json:"audit_id,omitempty"`
	AuditorID    string     `json:"auditor_id,omitempty"`
	DeptID       string     `json:"dept_id,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	RequiresCode bool       `json:"requires_code,omitempty"`
	VerifyCode   string     `json:"verify_code,omitempty"`
}

type VerifyResult struct {
	IsValid bool   `json:"is_valid"`
	Reason  Reason `json:"reason,omitempty"`
}

// GrantResponse is the issuance response, including the client-presentable
// URL encoding of the token.
type GrantResponse struct {
	ID         string    `json:"id"`
	AuditID    string    `json:"audit_id"`
	AuditorID  string    `json:"auditor_id"`
	DeptID     string    `json:"dept_id"`
	Token      string    `json:"token"`
	URL        string    `json:"url"`
	VerifyCode string    `json:"verify_code,omitempty"`
	ValidFrom  time.Time `json:"valid_from"`
	ValidTo    time.Time `json:"valid_to"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func (g *AccessGrant) ToResponse(scanBaseURL string, now time.Time) GrantResponse {
	resp := GrantResponse{
		ID:        g.ID,
		AuditID:   g.AuditID,
		AuditorID: g.AuditorID,
		DeptID:    g.DeptID,
		Token:     g.Token,
		URL:       ScanURL(scanBaseURL, g.Token),
		ValidFrom: g.ValidFrom,
		ValidTo:   g.ValidTo,
		Status:    g.EffectiveStatus(now),
		CreatedAt: g.CreatedAt,
	}
	if g.RequiresVerifyCode() {
		resp.VerifyCode = *g.VerifyCode
	}
	return resp
}

// ListFilter narrows List results. Zero-valued fields are ignored.
type ListFilter struct {
	AuditID   string
	AuditorID string
	DeptID    string
	Limit     int
	Offset    int
}
