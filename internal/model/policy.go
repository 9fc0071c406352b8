package model

import (
	"time"

	"github.com/google/uuid"
)

// Policy is the container that owns compliance items and names the default
// reviewer for their approvals.
type Policy struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	FrameworkName string     `gorm:"type:varchar(255)" json:"framework_name"`
	ReviewerID    uuid.UUID  `gorm:"type:uuid;not null" json:"reviewer_id"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
