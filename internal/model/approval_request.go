package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExtractedDataSchemaVersion is bumped whenever ExtractedData changes shape.
const ExtractedDataSchemaVersion = 1

// DeactivationIdentifierPrefix tags approval rows that ask to retire an
// active compliance version.
const DeactivationIdentifierPrefix = "COMP-DEACTIVATE-"

// ApprovalKind discriminates the payload carried by an approval request.
type ApprovalKind string

const (
	ApprovalKindReview       ApprovalKind = "compliance_review"
	ApprovalKindDeactivation ApprovalKind = "compliance_deactivation"
	ApprovalKindToggle       ApprovalKind = "compliance_toggle"
)

func (k ApprovalKind) Valid() bool {
	switch k {
	case ApprovalKindReview, ApprovalKindDeactivation, ApprovalKindToggle:
		return true
	}
	return false
}

// Decision is the reviewer verdict embedded in every approval snapshot.
type Decision struct {
	Approved       *bool      `json:"approved"`
	Remarks        string     `json:"remarks"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	InResubmission bool       `json:"in_resubmission,omitempty"`
}

// ComplianceSnapshot freezes the reviewed record at submission time.
type ComplianceSnapshot struct {
	ComplianceID      uuid.UUID  `json:"compliance_id"`
	Identifier        string     `json:"identifier"`
	Version           string     `json:"version"`
	PreviousVersionID *uuid.UUID `json:"previous_version_id,omitempty"`
	PolicyID          uuid.UUID  `json:"policy_id"`
	ComplianceFields
}

// DeactivationDetails describes a request to retire an active version.
type DeactivationDetails struct {
	ComplianceID       uuid.UUID `json:"compliance_id"`
	OriginalIdentifier string    `json:"original_identifier"`
	Version            string    `json:"version"`
	Reason             string    `json:"reason"`
}

// ToggleDetails records a manual switch of the active version.
type ToggleDetails struct {
	ComplianceID   uuid.UUID   `json:"compliance_id"`
	ActivatedID    *uuid.UUID  `json:"activated_id,omitempty"`
	DeactivatedIDs []uuid.UUID `json:"deactivated_ids"`
}

// ExtractedData is the typed snapshot stored with each approval request.
// Type selects which payload pointer is set.
type ExtractedData struct {
	SchemaVersion int                  `json:"schema_version"`
	Type          ApprovalKind         `json:"type"`
	Compliance    *ComplianceSnapshot  `json:"compliance,omitempty"`
	Deactivation  *DeactivationDetails `json:"deactivation,omitempty"`
	Toggle        *ToggleDetails       `json:"toggle,omitempty"`
	Decision      Decision             `json:"compliance_approval"`
}

// Validate checks that the discriminator and payload agree.
func (d ExtractedData) Validate() error {
	if d.SchemaVersion != ExtractedDataSchemaVersion {
		return fmt.Errorf("unsupported extracted data schema version %d", d.SchemaVersion)
	}
	switch d.Type {
	case ApprovalKindReview:
		if d.Compliance == nil {
			return errors.New("review approval is missing its compliance snapshot")
		}
		return d.Compliance.Mitigation.Data().Validate()
	case ApprovalKindDeactivation:
		if d.Deactivation == nil {
			return errors.New("deactivation approval is missing its details")
		}
	case ApprovalKindToggle:
		if d.Toggle == nil {
			return errors.New("toggle approval is missing its details")
		}
	default:
		return fmt.Errorf("unknown approval type %q", d.Type)
	}
	return nil
}

// ApprovalRequest is one review submission for a compliance identifier.
// Decided rows are kept; every new submission or decision appends a row.
type ApprovalRequest struct {
	ID            uuid.UUID                         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Identifier    string                            `gorm:"type:varchar(255);not null;index" json:"identifier"`
	Version       string                            `gorm:"type:varchar(20);not null" json:"version"`
	ExtractedData datatypes.JSONType[ExtractedData] `gorm:"type:jsonb;not null" json:"extracted_data"`
	UserID        *uuid.UUID                        `gorm:"type:uuid;index" json:"user_id"`
	ReviewerID    uuid.UUID                         `gorm:"type:uuid;not null;index" json:"reviewer_id"`
	ApprovedNot   *bool                             `gorm:"index" json:"approved_not"`
	ApprovedDate  *time.Time                        `json:"approved_date"`
	DueDate       *time.Time                        `json:"due_date"`
	CreatedAt     time.Time                         `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time                         `json:"updated_at"`
}

func (ApprovalRequest) TableName() string {
	return "compliance_approvals"
}

// Extracted returns the validated snapshot.
func (a *ApprovalRequest) Extracted() (ExtractedData, error) {
	data := a.ExtractedData.Data()
	if err := data.Validate(); err != nil {
		return ExtractedData{}, fmt.Errorf("approval %s: %w", a.ID, err)
	}
	return data, nil
}

// IsPending reports whether no decision was recorded yet.
func (a *ApprovalRequest) IsPending() bool {
	return a.ApprovedNot == nil
}

// IsRejected reports an explicit negative decision.
func (a *ApprovalRequest) IsRejected() bool {
	return a.ApprovedNot != nil && !*a.ApprovedNot
}

// BoolPtr is a small helper for the tri-state decision fields.
func BoolPtr(b bool) *bool {
	return &b
}
