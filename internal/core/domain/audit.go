package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionCreateItem     AuditAction = "CREATE_ITEM"
	AuditActionTransferItem   AuditAction = "TRANSFER_ITEM"
	AuditActionScanTag        AuditAction = "SCAN_TAG"
	AuditActionRotateKey      AuditAction = "ROTATE_KEY"
	AuditActionTamperDetected AuditAction = "TAMPER_DETECTED"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	ItemID       *uuid.UUID  `json:"item_id,omitempty"`
	Actor        string      `json:"actor,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
