package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit actions recorded by the workflow
const (
	ActionCreateCompliance = "CREATE_COMPLIANCE"
	ActionEditCompliance   = "EDIT_COMPLIANCE"
	ActionCloneCompliance  = "CLONE_COMPLIANCE"
	ActionToggleActive     = "TOGGLE_ACTIVE_VERSION"
	ActionCreatePolicy     = "CREATE_POLICY"

	ActionCreateApprovalRequest = "CREATE_APPROVAL_REQUEST"
	ActionApproveRequest        = "APPROVE_REQUEST"
	ActionRejectRequest         = "REJECT_REQUEST"
	ActionResubmitRequest       = "RESUBMIT_REQUEST"
	ActionRequestDeactivation   = "REQUEST_DEACTIVATION"
	ActionApproveDeactivation   = "APPROVE_DEACTIVATION"
	ActionRejectDeactivation    = "REJECT_DEACTIVATION"
	ActionSupersedeVersion      = "SUPERSEDE_VERSION"
)

// AuditLog is one trail row. It is written in the same transaction as the
// change it describes, so a rolled back operation leaves no entry.
type AuditLog struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil for system actions
	User   *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action string     `gorm:"type:varchar(50);not null;index" json:"action"`
	// EntityID is the uuid of the compliance, approval or policy row touched.
	EntityID string `gorm:"type:varchar(64);index" json:"entity_id"`
	// EntityName carries the compliance identifier or policy name.
	EntityName string         `gorm:"type:varchar(255);index" json:"entity_name,omitempty"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}
