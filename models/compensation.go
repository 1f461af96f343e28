package models

import "time"

// Compensation types and statuses. Status only moves forward:
// pending -> approved -> paid. The winner path starts at approved.
const (
	CompensationTypeWinner        = "winner"
	CompensationTypeParticipation = "participation"

	CompensationStatusPending  = "pending"
	CompensationStatusApproved = "approved"
	CompensationStatusPaid     = "paid"
)

// Compensation is a tracked payment obligation tied to one submission.
// The system records status only; it never moves money.
type Compensation struct {
	CompensationID int        `gorm:"primaryKey;column:compensation_id" json:"compensation_id"`
	SubmissionID   int        `gorm:"column:submission_id" json:"submission_id"`
	UserID         string     `gorm:"column:user_id" json:"user_id"`
	ProjectID      int        `gorm:"column:project_id" json:"project_id"`
	Amount         float64    `gorm:"column:amount" json:"amount"`
	Type           string     `gorm:"column:type" json:"type"`
	Status         string     `gorm:"column:status" json:"status"`
	ApprovedBy     *string    `gorm:"column:approved_by" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	PaidAt         *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`
	Notes          *string    `gorm:"column:notes" json:"notes,omitempty"`
	Version        int        `gorm:"column:version" json:"version"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Submission *Submission `gorm:"foreignKey:SubmissionID;references:SubmissionID" json:"submission,omitempty"`
	Project    *Project    `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
	User       *User       `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName overrides the table name for Compensation
func (Compensation) TableName() string {
	return "compensations"
}
