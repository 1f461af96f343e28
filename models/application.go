package models

import "time"

// Application statuses. "awarded" is set by winner selection, never by a
// direct application operation.
const (
	ApplicationStatusSubmitted   = "submitted"
	ApplicationStatusShortlisted = "shortlisted"
	ApplicationStatusRejected    = "rejected"
	ApplicationStatusAwarded     = "awarded"
)

// Application links a developer to a project. At most one per
// (user, project) pair, enforced by a unique index.
type Application struct {
	ApplicationID      int        `gorm:"primaryKey;column:application_id" json:"application_id"`
	ProjectID          int        `gorm:"column:project_id;uniqueIndex:uniq_project_user" json:"project_id"`
	UserID             string     `gorm:"column:user_id;uniqueIndex:uniq_project_user" json:"user_id"`
	Proposal           string     `gorm:"column:proposal" json:"proposal"`
	Status             string     `gorm:"column:status" json:"status"`
	SubmissionDeadline *time.Time `gorm:"column:submission_deadline" json:"submission_deadline,omitempty"`
	Version            int        `gorm:"column:version" json:"version"`
	CreatedAt          time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Project *Project `gorm:"foreignKey:ProjectID;references:ProjectID" json:"project,omitempty"`
	User    *User    `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// IsTerminal reports whether the application can no longer change status.
func (a *Application) IsTerminal() bool {
	return a.Status == ApplicationStatusRejected || a.Status == ApplicationStatusAwarded
}

// TableName overrides the table name for Application
func (Application) TableName() string {
	return "applications"
}
