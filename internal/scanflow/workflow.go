package scanflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Danhnam1/Audit-System-sub000/internal/department"
	"github.com/Danhnam1/Audit-System-sub000/internal/directory"
	"github.com/Danhnam1/Audit-System-sub000/internal/grant"
)

// State of a client scan session.
type State string

const (
	StateIdle         State = "idle"
	StateScanning     State = "scanning"
	StateScanned      State = "scanned"
	StateAwaitingCode State = "awaiting_code"
	StateVerified     State = "verified"
	StateRouted       State = "routed"
)

var (
	ErrCaptureActive     = errors.New("a capture session is already active")
	ErrInvalidTransition = errors.New("operation not allowed in current state")
	ErrDuplicateCapture  = errors.New("token already captured")
	ErrTooManyAttempts   = errors.New("too many failed code attempts")
)

// Display fallbacks when the admin application cannot be reached. Lookup
// failures never block progression through the workflow.
const (
	PlaceholderAudit      = "Unknown audit"
	PlaceholderAuditor    = "Unknown auditor"
	PlaceholderDepartment = "Unknown department"
)

const DefaultMaxCodeAttempts = 5

// GrantScanner is the slice of the grant service the workflow drives.
type GrantScanner interface {
	Scan(ctx context.Context, token, scannerUserID string) (*grant.ScanResult, error)
	VerifyCode(ctx context.Context, token, scannerUserID, code string) (*grant.VerifyResult, error)
}

// DisplayResolver resolves auditor and audit display names, best-effort.
type DisplayResolver interface {
	GetAuditor(ctx context.Context, auditorID string) (*directory.AuditorProfile, error)
	GetAudit(ctx context.Context, auditID string) (*directory.AuditSummary, error)
}

// DepartmentLookup resolves the local department record for display.
type DepartmentLookup interface {
	GetByID(ctx context.Context, deptID string) (*department.Department, error)
}

type Display struct {
	AuditTitle     string `json:"audit_title"`
	AuditorName    string `json:"auditor_name"`
	DepartmentName string `json:"department_name"`
}

// Outcome is what the client renders after a token submission.
type Outcome struct {
	State   State             `json:"state"`
	Result  *grant.ScanResult `json:"result"`
	Display Display           `json:"display"`
}

type Config struct {
	ScannerUserID string
	// CodeVisible marks sessions whose role may read the verify code
	// straight from the scan result (the credential holder). Everyone else
	// must obtain the code out-of-band and type it in.
	CodeVisible     bool
	MaxCodeAttempts int
	DedupSize       int
	DedupWindow     time.Duration
}

// Session is a single client's scan workflow. All transitions are guarded
// by one mutex: at most one capture is in flight per session, and a stale
// call in the wrong state gets ErrInvalidTransition instead of corrupting
// the machine.
type Session struct {
	mu       sync.Mutex
	state    State
	cfg      Config
	scanner  GrantScanner
	resolver DisplayResolver
	depts    DepartmentLookup
	dedup    *DedupCache
	logger   *slog.Logger

	token    string
	result   *grant.ScanResult
	display  Display
	attempts int
}

func NewSession(scanner GrantScanner, resolver DisplayResolver, depts DepartmentLookup, cfg Config, logger *slog.Logger) *Session {
	if cfg.MaxCodeAttempts <= 0 {
		cfg.MaxCodeAttempts = DefaultMaxCodeAttempts
	}
	return &Session{
		state:    StateIdle,
		cfg:      cfg,
		scanner:  scanner,
		resolver: resolver,
		depts:    depts,
		dedup:    NewDedupCache(cfg.DedupSize, cfg.DedupWindow),
		logger:   logger,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartCapture begins a camera or manual-entry capture. Only one capture
// may be active per session.
func (s *Session) StartCapture() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateScanning {
		return ErrCaptureActive
	}
	if s.state != StateIdle {
		return ErrInvalidTransition
	}

	s.state = StateScanning
	s.logger.Debug("capture started", "scanner_id", s.cfg.ScannerUserID)
	return nil
}

// CancelCapture aborts an in-flight capture and returns to idle with no
// record created or consumed.
func (s *Session) CancelCapture() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateScanning {
		return ErrInvalidTransition
	}

	s.resetLocked()
	s.logger.Debug("capture cancelled", "scanner_id", s.cfg.ScannerUserID)
	return nil
}

// SubmitToken validates a captured token and advances the machine. An
// invalid scan leaves the session in Scanned so the client can show the
// reason before resetting; a valid scan moves on to AwaitingCode or
// Verified depending on whether a second factor is still owed.
func (s *Session) SubmitToken(ctx context.Context, token string) (*Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateScanning {
		return nil, ErrInvalidTransition
	}

	if s.dedup.Seen(token, time.Now()) {
		return nil, ErrDuplicateCapture
	}

	result, err := s.scanner.Scan(ctx, token, s.cfg.ScannerUserID)
	if err != nil {
		// Transport fault, not a scan outcome: stay in Scanning so the
		// client can retry.
		s.logger.Error("scan call failed", "error", err)
		return nil, err
	}

	s.dedup.Record(token, time.Now())
	s.token = token
	s.result = result
	s.state = StateScanned

	if !result.IsValid {
		s.logger.Info("scan rejected", "reason", result.Reason, "scanner_id", s.cfg.ScannerUserID)
		return &Outcome{State: s.state, Result: result}, nil
	}

	s.display = s.resolveDisplay(ctx, result)

	if result.RequiresCode && !(s.cfg.CodeVisible && result.VerifyCode != "") {
		s.state = StateAwaitingCode
	} else {
		s.state = StateVerified
	}

	s.logger.Info("scan accepted",
		"scanner_id", s.cfg.ScannerUserID,
		"dept_id", result.DeptID,
		"state", s.state)

	return &Outcome{State: s.state, Result: result, Display: s.display}, nil
}

// SubmitCode checks the typed-in second factor. A mismatch keeps the
// session in AwaitingCode for retry until the attempt bound is hit, at
// which point the session resets to idle.
func (s *Session) SubmitCode(ctx context.Context, code string) (*grant.VerifyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingCode {
		return nil, ErrInvalidTransition
	}

	result, err := s.scanner.VerifyCode(ctx, s.token, s.cfg.ScannerUserID, code)
	if err != nil {
		s.logger.Error("verify call failed", "error", err)
		return nil, err
	}

	if result.IsValid {
		s.state = StateVerified
		s.attempts = 0
		return result, nil
	}

	s.attempts++
	s.logger.Warn("code rejected",
		"reason", result.Reason,
		"attempts", s.attempts,
		"scanner_id", s.cfg.ScannerUserID)

	if s.attempts >= s.cfg.MaxCodeAttempts {
		s.resetLocked()
		return result, ErrTooManyAttempts
	}

	return result, nil
}

// Route hands the caller the resolved audit/department pair for
// department-scoped work. Terminal for the session.
func (s *Session) Route() (auditID, deptID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateVerified {
		return "", "", ErrInvalidTransition
	}

	s.state = StateRouted
	return s.result.AuditID, s.result.DeptID, nil
}

// Reset returns to idle from any state, discarding all captured data.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Session) resetLocked() {
	s.state = StateIdle
	s.token = ""
	s.result = nil
	s.display = Display{}
	s.attempts = 0
}

func (s *Session) resolveDisplay(ctx context.Context, result *grant.ScanResult) Display {
	display := Display{
		AuditTitle:     PlaceholderAudit,
		AuditorName:    PlaceholderAuditor,
		DepartmentName: PlaceholderDepartment,
	}

	if s.resolver != nil {
		if audit, err := s.resolver.GetAudit(ctx, result.AuditID); err == nil && audit != nil {
			display.AuditTitle = audit.Title
		} else if err != nil {
			s.logger.Warn("audit display lookup failed", "audit_id", result.AuditID, "error", err)
		}

		if auditor, err := s.resolver.GetAuditor(ctx, result.AuditorID); err == nil && auditor != nil {
			display.AuditorName = auditor.DisplayName
		} else if err != nil {
			s.logger.Warn("auditor display lookup failed", "auditor_id", result.AuditorID, "error", err)
		}
	}

	if s.depts != nil {
		if dept, err := s.depts.GetByID(ctx, result.DeptID); err == nil && dept != nil {
			display.DepartmentName = dept.Name
		} else if err != nil {
			s.logger.Warn("department display lookup failed", "dept_id", result.DeptID, "error", err)
		}
	}

	return display
}
