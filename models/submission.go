package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission statuses.
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusSelected  = "selected"
	SubmissionStatusRejected  = "rejected"
)

// SubmissionLink is one labeled deliverable link. The whole list is
// stored as a JSON column, preserving order.
type SubmissionLink struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Submission is a developer's deliverable for a shortlisted application.
// At most one per application. The compensation_* columns mirror the
// related compensation row and are only written in the same transaction
// as the source of truth.
type Submission struct {
	SubmissionID       int            `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	ApplicationID      int            `gorm:"column:application_id;unique" json:"application_id"`
	ProjectID          int            `gorm:"column:project_id" json:"project_id"`
	UserID             string         `gorm:"column:user_id" json:"user_id"`
	Title              string         `gorm:"column:title" json:"title"`
	Description        string         `gorm:"column:description" json:"description"`
	SubmissionLinks    datatypes.JSON `gorm:"column:submission_links" json:"submission_links"`
	Status             string         `gorm:"column:status" json:"status"`
	Rating             *int           `gorm:"column:rating" json:"rating,omitempty"`
	Feedback           *string        `gorm:"column:feedback" json:"feedback,omitempty"`
	Deadline           *time.Time     `gorm:"column:deadline" json:"deadline,omitempty"`
	CompensationAmount *float64       `gorm:"column:compensation_amount" json:"compensation_amount,omitempty"`
	CompensationType   *string        `gorm:"column:compensation_type" json:"compensation_type,omitempty"`
	CompensationStatus *string        `gorm:"column:compensation_status" json:"compensation_status,omitempty"`
	Version            int            `gorm:"column:version" json:"version"`
	SubmittedAt        time.Time      `gorm:"column:submitted_at" json:"submitted_at"`
	UpdatedAt          *time.Time     `gorm:"column:updated_at" json:"updated_at"`

	Application *Application `gorm:"foreignKey:ApplicationID;references:ApplicationID" json:"application,omitempty"`
	Project     *Project     `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
	User        *User        `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// DeadlinePassed reports whether the submission deadline is behind now.
// A submission without a deadline never expires.
func (s *Submission) DeadlinePassed(now time.Time) bool {
	return s.Deadline != nil && s.Deadline.Before(now)
}

// TableName overrides the table name for Submission
func (Submission) TableName() string {
	return "submissions"
}
