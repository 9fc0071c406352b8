package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ComplianceStatus is the review state of one compliance version.
type ComplianceStatus string

const (
	StatusUnderReview ComplianceStatus = "Under Review"
	StatusApproved    ComplianceStatus = "Approved"
	StatusRejected    ComplianceStatus = "Rejected"
)

func (s ComplianceStatus) Valid() bool {
	switch s {
	case StatusUnderReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ActiveState marks whether a version is the one currently in force.
type ActiveState string

const (
	StateActive   ActiveState = "Active"
	StateInactive ActiveState = "Inactive"
)

func (a ActiveState) Valid() bool {
	switch a {
	case StateActive, StateInactive:
		return true
	}
	return false
}

// VersionKind selects how EditCompliance bumps the record version.
type VersionKind string

const (
	VersionMinor VersionKind = "Minor"
	VersionMajor VersionKind = "Major"
)

func (k VersionKind) Valid() bool {
	switch k {
	case VersionMinor, VersionMajor:
		return true
	}
	return false
}

// ComplianceFields holds the business content of a compliance item. The
// workflow engine copies it between versions but never interprets it.
type ComplianceFields struct {
	Title                string                         `gorm:"type:varchar(255)" json:"compliance_title"`
	Description          string                         `gorm:"type:text;not null" json:"compliance_item_description"`
	ComplianceType       string                         `gorm:"type:varchar(100)" json:"compliance_type"`
	Scope                string                         `gorm:"type:text" json:"scope"`
	Objective            string                         `gorm:"type:text" json:"objective"`
	BusinessUnitsCovered string                         `gorm:"type:text" json:"business_units_covered"`
	IsRisk               bool                           `gorm:"default:false" json:"is_risk"`
	PossibleDamage       string                         `gorm:"type:text" json:"possible_damage"`
	Mitigation           datatypes.JSONType[Mitigation] `gorm:"type:jsonb" json:"mitigation"`
	Criticality          string                         `gorm:"type:varchar(20)" json:"criticality"`         // High, Medium, Low
	MandatoryOptional    string                         `gorm:"type:varchar(20)" json:"mandatory_optional"`  // Mandatory, Optional
	ManualAutomatic      string                         `gorm:"type:varchar(20)" json:"manual_automatic"`    // Manual, Automatic
	Impact               float64                        `json:"impact"`
	Probability          float64                        `json:"probability"`
	MaturityLevel        string                         `gorm:"type:varchar(50)" json:"maturity_level"`
	Applicability        string                         `gorm:"type:text" json:"applicability"`
	PermanentTemporary   string                         `gorm:"type:varchar(20)" json:"permanent_temporary"` // Permanent, Temporary
}

// Compliance is one version of a compliance item. Versions sharing an
// Identifier form a chain through PreviousVersionID. Rows are never deleted.
type Compliance struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Identifier        string           `gorm:"type:varchar(255);not null;index" json:"identifier"`
	Version           string           `gorm:"type:varchar(20);not null" json:"version"`
	PreviousVersionID *uuid.UUID       `gorm:"type:uuid;index" json:"previous_version_id"`
	Status            ComplianceStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ActiveInactive    ActiveState      `gorm:"type:varchar(10);not null;index" json:"active_inactive"`
	PolicyID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"policy_id"`

	ComplianceFields `gorm:"embedded"`

	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Compliance) TableName() string {
	return "compliances"
}

// IsInForce reports whether this version is the approved, active one.
func (c *Compliance) IsInForce() bool {
	return c.Status == StatusApproved && c.ActiveInactive == StateActive
}
