package grant

import (
	"context"
	"log/slog"
	"time"

	"github.com/Danhnam1/Audit-System-sub000/internal"
	"github.com/Danhnam1/Audit-System-sub000/internal/core/events"
	"github.com/google/uuid"
)

// Repository defines the data access methods for access grants. Grants are
// never physically deleted; revocation is the only update.
type Repository interface {
	Create(g *AccessGrant) error
	GetByID(id string) (*AccessGrant, error)
	GetByToken(token string) (*AccessGrant, error)
	List(filter ListFilter) ([]*AccessGrant, error)
	Revoke(id string, revokedAt time.Time) error
}

// SensitivityPolicy decides at issuance time whether a department needs a
// second factor. Implemented by the department service.
type SensitivityPolicy interface {
	IsSensitive(ctx context.Context, deptID string) (bool, error)
}

// ReferenceResolver checks that referenced audit and auditor identities
// exist in the admin application.
type ReferenceResolver interface {
	AuditExists(ctx context.Context, auditID string) (bool, error)
	AuditorExists(ctx context.Context, auditorID string) (bool, error)
}

// EventPublisher receives grant lifecycle events. Delivery is best-effort
// and never part of the protocol decision.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Config struct {
	DefaultTTL       time.Duration
	TokenBytes       int
	VerifyCodeLength int
	ScanBaseURL      string
}

type Service struct {
	repo     Repository
	policy   SensitivityPolicy
	resolver ReferenceResolver
	bus      EventPublisher
	cfg      Config
	logger   *slog.Logger
}

func NewService(repo Repository, policy SensitivityPolicy, resolver ReferenceResolver, bus EventPublisher, cfg Config, logger *slog.Logger) *Service {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 60 * time.Minute
	}
	if cfg.TokenBytes <= 0 {
		cfg.TokenBytes = DefaultTokenBytes
	}
	if cfg.VerifyCodeLength <= 0 {
		cfg.VerifyCodeLength = DefaultVerifyCodeLength
	}
	return &Service{
		repo:     repo,
		policy:   policy,
		resolver: resolver,
		bus:      bus,
		cfg:      cfg,
		logger:   logger,
	}
}

// Issue creates a new grant for an (audit, auditor, department) triple.
// Sensitivity is evaluated exactly once, here; later department changes do
// not affect already-issued grants. Issuing never revokes prior grants for
// the same triple.
func (s *Service) Issue(ctx context.Context, dto IssueGrantDTO) (*GrantResponse, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("grant validation failed", "error", err, "audit_id", dto.AuditID)
		return nil, err
	}

	validFrom, validTo := dto.Window()
	if validTo.IsZero() {
		validTo = validFrom.Add(s.cfg.DefaultTTL)
	}

	if exists, err := s.resolver.AuditExists(ctx, dto.AuditID); err != nil {
		s.logger.Error("audit lookup failed", "error", err, "audit_id", dto.AuditID)
		return nil, internal.NewExternalError("audit lookup failed", err)
	} else if !exists {
		return nil, internal.ErrAuditNotFound
	}

	if exists, err := s.resolver.AuditorExists(ctx, dto.AuditorID); err != nil {
		s.logger.Error("auditor lookup failed", "error", err, "auditor_id", dto.AuditorID)
		return nil, internal.NewExternalError("auditor lookup failed", err)
	} else if !exists {
		return nil, internal.ErrAuditorNotFound
	}

	sensitive, err := s.policy.IsSensitive(ctx, dto.DeptID)
	if err != nil {
		s.logger.Error("sensitivity lookup failed", "error", err, "dept_id", dto.DeptID)
		return nil, err
	}

	g := &AccessGrant{
		ID:        uuid.NewString(),
		AuditID:   dto.AuditID,
		AuditorID: dto.AuditorID,
		DeptID:    dto.DeptID,
		ValidFrom: validFrom,
		ValidTo:   validTo,
		Status:    StatusActive,
		CreatedAt: time.Now(),
	}

	if sensitive {
		code, err := NewVerifyCode(s.cfg.VerifyCodeLength)
		if err != nil {
			return nil, internal.NewInternalError("failed to generate verify code", err)
		}
		g.VerifyCode = &code
	}

	// Token collisions are astronomically unlikely but the store enforces
	// uniqueness; retry a couple of times before giving up.
	const maxTokenAttempts = 3
	for attempt := 1; ; attempt++ {
		token, err := NewToken(s.cfg.TokenBytes)
		if err != nil {
			return nil, internal.NewInternalError("failed to generate token", err)
		}
		g.Token = token

		err = s.repo.Create(g)
		if err == nil {
			break
		}
		if err == internal.ErrDuplicateToken && attempt < maxTokenAttempts {
			s.logger.Warn("token collision, regenerating", "attempt", attempt)
			continue
		}
		s.logger.Error("failed to store grant", "error", err, "audit_id", dto.AuditID, "dept_id", dto.DeptID)
		return nil, err
	}

	s.logger.Info("grant issued",
		"grant_id", g.ID,
		"audit_id", g.AuditID,
		"auditor_id", g.AuditorID,
		"dept_id", g.DeptID,
		"sensitive", sensitive,
		"valid_from", g.ValidFrom,
		"valid_to", g.ValidTo)

	s.publish(ctx, events.NewGrantIssuedEvent(g.ID, g.AuditID, g.AuditorID, g.DeptID))

	resp := g.ToResponse(s.cfg.ScanBaseURL, time.Now())
	return &resp, nil
}

// Scan evaluates a presented token. Repeated scans of a still-valid token
// keep succeeding: the grant record is never mutated here. scannerUserID is
// recorded for the audit log only and does not gate the decision.
func (s *Service) Scan(ctx context.Context, token, scannerUserID string) (*ScanResult, error) {
	g, err := s.repo.GetByToken(token)
	if err != nil {
		if err == internal.ErrGrantNotFound {
			s.logger.Info("scan of unknown token", "scanner_id", scannerUserID)
			return &ScanResult{IsValid: false, Reason: ReasonInvalid}, nil
		}
		s.logger.Error("grant lookup failed", "error", err)
		return nil, err
	}

	result := Evaluate(g, time.Now())

	s.logger.Info("grant scanned",
		"grant_id", g.ID,
		"scanner_id", scannerUserID,
		"is_valid", result.IsValid,
		"reason", result.Reason)

	s.publish(ctx, events.NewGrantScannedEvent(g.ID, scannerUserID, result.IsValid, string(result.Reason)))

	return result, nil
}

// VerifyCode checks the second factor for a sensitive-department grant.
// The grant must pass the same validity rules as Scan before any code
// comparison happens. Comparison is an exact, case-sensitive match; a
// mismatch leaves the grant untouched and the caller may retry.
func (s *Service) VerifyCode(ctx context.Context, token, scannerUserID, submittedCode string) (*VerifyResult, error) {
	g, err := s.repo.GetByToken(token)
	if err != nil {
		if err == internal.ErrGrantNotFound {
			return &VerifyResult{IsValid: false, Reason: ReasonInvalid}, nil
		}
		s.logger.Error("grant lookup failed", "error", err)
		return nil, err
	}

	if eval := Evaluate(g, time.Now()); !eval.IsValid {
		return &VerifyResult{IsValid: false, Reason: eval.Reason}, nil
	}

	if !g.RequiresVerifyCode() || submittedCode != *g.VerifyCode {
		s.logger.Warn("verify code mismatch", "grant_id", g.ID, "scanner_id", scannerUserID)
		return &VerifyResult{IsValid: false, Reason: ReasonCodeMismatch}, nil
	}

	s.logger.Info("verify code accepted", "grant_id", g.ID, "scanner_id", scannerUserID)
	return &VerifyResult{IsValid: true}, nil
}

// List returns grants matching the filter, newest first, so callers can
// treat the most recently issued grant for a triple as authoritative.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]GrantResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	grants, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list grants", "error", err)
		return nil, err
	}

	now := time.Now()
	responses := make([]GrantResponse, 0, len(grants))
	for _, g := range grants {
		responses = append(responses, g.ToResponse(s.cfg.ScanBaseURL, now))
	}
	return responses, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*GrantResponse, error) {
	g, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	resp := g.ToResponse(s.cfg.ScanBaseURL, time.Now())
	return &resp, nil
}

// Revoke forces a grant into the terminal revoked state. Revoking an
// already-revoked grant is a no-op.
func (s *Service) Revoke(ctx context.Context, grantID, adminID string) error {
	g, err := s.repo.GetByID(grantID)
	if err != nil {
		s.logger.Error("grant not found for revocation", "error", err, "grant_id", grantID)
		return err
	}

	if g.IsRevoked() {
		s.logger.Info("grant already revoked", "grant_id", grantID, "admin_id", adminID)
		return nil
	}

	if err := s.repo.Revoke(grantID, time.Now()); err != nil {
		s.logger.Error("failed to revoke grant", "error", err, "grant_id", grantID)
		return err
	}

	s.logger.Info("grant revoked", "grant_id", grantID, "admin_id", adminID)
	s.publish(ctx, events.NewGrantRevokedEvent(grantID, adminID))
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish grant event", "event_type", event.EventType(), "error", err)
	}
}
