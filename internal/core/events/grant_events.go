package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeGrantIssued  = "grant.issued"
	EventTypeGrantScanned = "grant.scanned"
	EventTypeGrantRevoked = "grant.revoked"
)

type GrantIssuedEvent struct {
	BaseEvent
	GrantID   string `json:"grant_id"`
	AuditID   string `json:"audit_id"`
	AuditorID string `json:"auditor_id"`
	DeptID    string `json:"dept_id"`
}

func NewGrantIssuedEvent(grantID, auditID, auditorID, deptID string) *GrantIssuedEvent {
	return &GrantIssuedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeGrantIssued,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"grant_id":   grantID,
				"audit_id":   auditID,
				"auditor_id": auditorID,
				"dept_id":    deptID,
			},
		},
		GrantID:   grantID,
		AuditID:   auditID,
		AuditorID: auditorID,
		DeptID:    deptID,
	}
}

type GrantScannedEvent struct {
	BaseEvent
	GrantID   string `json:"grant_id"`
	ScannerID string `json:"scanner_id"`
	IsValid   bool   `json:"is_valid"`
	Reason    string `json:"reason,omitempty"`
}

func NewGrantScannedEvent(grantID, scannerID string, isValid bool, reason string) *GrantScannedEvent {
	return &GrantScannedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeGrantScanned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"grant_id":   grantID,
				"scanner_id": scannerID,
				"is_valid":   isValid,
				"reason":     reason,
			},
		},
		GrantID:   grantID,
		ScannerID: scannerID,
		IsValid:   isValid,
		Reason:    reason,
	}
}

type GrantRevokedEvent struct {
	BaseEvent
	GrantID string `json:"grant_id"`
	AdminID string `json:"admin_id"`
}

func NewGrantRevokedEvent(grantID, adminID string) *GrantRevokedEvent {
	return &GrantRevokedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeGrantRevoked,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"grant_id": grantID,
				"admin_id": adminID,
			},
		},
		GrantID: grantID,
		AdminID: adminID,
	}
}
