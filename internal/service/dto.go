package service

import (
	"encoding/json"
	"fmt"
	"time"

	"governance/internal/model"
	"governance/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ComplianceInput carries the business fields of a compliance item.
type ComplianceInput struct {
	Title                string          `json:"compliance_title" validate:"required,max=255"`
	Description          string          `json:"compliance_item_description" validate:"required"`
	ComplianceType       string          `json:"compliance_type" validate:"max=100"`
	Scope                string          `json:"scope"`
	Objective            string          `json:"objective"`
	BusinessUnitsCovered string          `json:"business_units_covered"`
	IsRisk               bool            `json:"is_risk"`
	PossibleDamage       string          `json:"possible_damage" validate:"required_if=IsRisk true"`
	Mitigation           json.RawMessage `json:"mitigation" swaggertype:"object"`
	Criticality          string          `json:"criticality" validate:"omitempty,oneof=High Medium Low"`
	MandatoryOptional    string          `json:"mandatory_optional" validate:"omitempty,oneof=Mandatory Optional"`
	ManualAutomatic      string          `json:"manual_automatic" validate:"omitempty,oneof=Manual Automatic"`
	Impact               float64         `json:"impact" validate:"gte=0,lte=10"`
	Probability          float64         `json:"probability" validate:"gte=0,lte=10"`
	MaturityLevel        string          `json:"maturity_level" validate:"max=50"`
	Applicability        string          `json:"applicability"`
	PermanentTemporary   string          `json:"permanent_temporary" validate:"omitempty,oneof=Permanent Temporary"`
}

// toFields normalises the mitigation payload and returns the model fields.
func (in ComplianceInput) toFields() (model.ComplianceFields, error) {
	mitigation, err := model.NormalizeMitigation(in.Mitigation)
	if err != nil {
		return model.ComplianceFields{}, apperror.Validation(map[string]string{"mitigation": err.Error()})
	}
	return model.ComplianceFields{
		Title:                in.Title,
		Description:          in.Description,
		ComplianceType:       in.ComplianceType,
		Scope:                in.Scope,
		Objective:            in.Objective,
		BusinessUnitsCovered: in.BusinessUnitsCovered,
		IsRisk:               in.IsRisk,
		PossibleDamage:       in.PossibleDamage,
		Mitigation:           datatypes.NewJSONType(mitigation),
		Criticality:          in.Criticality,
		MandatoryOptional:    in.MandatoryOptional,
		ManualAutomatic:      in.ManualAutomatic,
		Impact:               in.Impact,
		Probability:          in.Probability,
		MaturityLevel:        in.MaturityLevel,
		Applicability:        in.Applicability,
		PermanentTemporary:   in.PermanentTemporary,
	}, nil
}

type CreateComplianceRequest struct {
	PolicyID   uuid.UUID  `json:"policy_id" validate:"required"`
	Identifier string     `json:"identifier" validate:"max=200"`
	ReviewerID *uuid.UUID `json:"reviewer_id"`
	DueDate    *time.Time `json:"due_date"`
	ComplianceInput
}

type EditComplianceRequest struct {
	VersionKind model.VersionKind `json:"version_kind" validate:"required,oneof=Major Minor"`
	ReviewerID  *uuid.UUID        `json:"reviewer_id"`
	DueDate     *time.Time        `json:"due_date"`
	ComplianceInput
}

// ComplianceOverrides replaces individual fields of a cloned item.
type ComplianceOverrides struct {
	Title                *string         `json:"compliance_title" validate:"omitempty,max=255"`
	Description          *string         `json:"compliance_item_description"`
	ComplianceType       *string         `json:"compliance_type" validate:"omitempty,max=100"`
	Scope                *string         `json:"scope"`
	Objective            *string         `json:"objective"`
	BusinessUnitsCovered *string         `json:"business_units_covered"`
	IsRisk               *bool           `json:"is_risk"`
	PossibleDamage       *string         `json:"possible_damage"`
	Mitigation           json.RawMessage `json:"mitigation" swaggertype:"object"`
	Criticality          *string         `json:"criticality" validate:"omitempty,oneof=High Medium Low"`
	MandatoryOptional    *string         `json:"mandatory_optional" validate:"omitempty,oneof=Mandatory Optional"`
	ManualAutomatic      *string         `json:"manual_automatic" validate:"omitempty,oneof=Manual Automatic"`
	Impact               *float64        `json:"impact" validate:"omitempty,gte=0,lte=10"`
	Probability          *float64        `json:"probability" validate:"omitempty,gte=0,lte=10"`
	MaturityLevel        *string         `json:"maturity_level" validate:"omitempty,max=50"`
	Applicability        *string         `json:"applicability"`
	PermanentTemporary   *string         `json:"permanent_temporary" validate:"omitempty,oneof=Permanent Temporary"`
}

// apply copies every set override onto f. Mitigation is always re-normalised.
func (o ComplianceOverrides) apply(f *model.ComplianceFields) error {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&f.Title, o.Title)
	setString(&f.Description, o.Description)
	setString(&f.ComplianceType, o.ComplianceType)
	setString(&f.Scope, o.Scope)
	setString(&f.Objective, o.Objective)
	setString(&f.BusinessUnitsCovered, o.BusinessUnitsCovered)
	setString(&f.PossibleDamage, o.PossibleDamage)
	setString(&f.Criticality, o.Criticality)
	setString(&f.MandatoryOptional, o.MandatoryOptional)
	setString(&f.ManualAutomatic, o.ManualAutomatic)
	setString(&f.MaturityLevel, o.MaturityLevel)
	setString(&f.Applicability, o.Applicability)
	setString(&f.PermanentTemporary, o.PermanentTemporary)
	if o.IsRisk != nil {
		f.IsRisk = *o.IsRisk
	}
	if o.Impact != nil {
		f.Impact = *o.Impact
	}
	if o.Probability != nil {
		f.Probability = *o.Probability
	}

	raw := o.Mitigation
	if len(raw) == 0 {
		current, err := json.Marshal(f.Mitigation.Data())
		if err != nil {
			return fmt.Errorf("encode mitigation: %w", err)
		}
		raw = current
	}
	mitigation, err := model.NormalizeMitigation(raw)
	if err != nil {
		return apperror.Validation(map[string]string{"mitigation": err.Error()})
	}
	f.Mitigation = datatypes.NewJSONType(mitigation)

	fields := map[string]string{}
	if f.Description == "" {
		fields["compliance_item_description"] = "is required"
	}
	if f.IsRisk && f.PossibleDamage == "" {
		fields["possible_damage"] = "is required when is_risk is true"
	}
	if len(fields) > 0 {
		return apperror.Validation(fields)
	}
	return nil
}

type CloneComplianceRequest struct {
	TargetPolicyID uuid.UUID           `json:"target_policy_id" validate:"required"`
	ReviewerID     *uuid.UUID          `json:"reviewer_id"`
	DueDate        *time.Time          `json:"due_date"`
	Overrides      ComplianceOverrides `json:"overrides"`
}

type DecisionRequest struct {
	Approved *bool  `json:"approved" validate:"required"`
	Remarks  string `json:"remarks" validate:"max=2000"`
}

type ResubmitRequest struct {
	DueDate *time.Time `json:"due_date"`
	ComplianceInput
}

type DeactivationRequest struct {
	Reason     string     `json:"reason" validate:"required,max=2000"`
	ReviewerID *uuid.UUID `json:"reviewer_id"`
	DueDate    *time.Time `json:"due_date"`
}

type DeactivationDecisionRequest struct {
	Remarks string `json:"remarks" validate:"max=2000"`
}

// ComplianceFilter narrows ListCompliances.
type ComplianceFilter struct {
	PolicyID       *uuid.UUID
	Identifier     string
	Status         model.ComplianceStatus
	ActiveInactive model.ActiveState
	Page           int
	Limit          int
}

// --- Results ---

type CreateComplianceResult struct {
	ComplianceID    uuid.UUID `json:"compliance_id"`
	Identifier      string    `json:"identifier"`
	Version         string    `json:"version"`
	ApprovalID      uuid.UUID `json:"approval_id"`
	ApprovalVersion string    `json:"approval_version"`
}

type EditComplianceResult struct {
	ComplianceID    uuid.UUID `json:"compliance_id"`
	Version         string    `json:"version"`
	ApprovalID      uuid.UUID `json:"approval_id"`
	ApprovalVersion string    `json:"approval_version"`
}

type CloneComplianceResult struct {
	ComplianceID uuid.UUID `json:"compliance_id"`
	Identifier   string    `json:"identifier"`
	ApprovalID   uuid.UUID `json:"approval_id"`
}

type DecisionResult struct {
	ApprovalID   uuid.UUID              `json:"approval_id"`
	Version      string                 `json:"version"`
	Approved     bool                   `json:"approved"`
	ComplianceID uuid.UUID              `json:"compliance_id"`
	Status       model.ComplianceStatus `json:"status"`
}

type ResubmitResult struct {
	ApprovalID   uuid.UUID `json:"approval_id"`
	Version      string    `json:"version"`
	ComplianceID uuid.UUID `json:"compliance_id"`
}

type ToggleResult struct {
	ComplianceID   uuid.UUID         `json:"compliance_id"`
	ActiveInactive model.ActiveState `json:"active_inactive"`
	ActivatedID    *uuid.UUID        `json:"activated_id,omitempty"`
	DeactivatedIDs []uuid.UUID       `json:"deactivated_ids"`
	ApprovalID     uuid.UUID         `json:"approval_id"`
}

type DeactivationResult struct {
	ApprovalID     uuid.UUID         `json:"approval_id"`
	ComplianceID   uuid.UUID         `json:"compliance_id"`
	ActiveInactive model.ActiveState `json:"active_inactive"`
}
