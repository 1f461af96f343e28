package models

import (
	"time"

	"gorm.io/datatypes"
)

// Project statuses.
const (
	ProjectStatusOpen       = "open"
	ProjectStatusInProgress = "in-progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusClosed     = "closed"
)

// Project represents the projects table. A project is owned by the
// company user that created it; applicants never write to it directly.
type Project struct {
	ProjectID       int            `gorm:"primaryKey;column:project_id" json:"project_id"`
	CompanyID       string         `gorm:"column:company_id" json:"company_id"`
	Title           string         `gorm:"column:title" json:"title"`
	Description     string         `gorm:"column:description" json:"description"`
	Category        string         `gorm:"column:category" json:"category"`
	Budget          float64        `gorm:"column:budget" json:"budget"`
	Duration        string         `gorm:"column:duration" json:"duration"`
	Deadline        *time.Time     `gorm:"column:deadline" json:"deadline,omitempty"`
	Status          string         `gorm:"column:status" json:"status"`
	ExperienceLevel string         `gorm:"column:experience_level" json:"experience_level"`
	Skills          datatypes.JSON `gorm:"column:skills" json:"skills"`
	Version         int            `gorm:"column:version" json:"version"`
	CreatedAt       time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       *time.Time     `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt       *time.Time     `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	Company *User `gorm:"foreignKey:CompanyID;references:UserID" json:"company,omitempty"`

	// Populated by list queries, not a column.
	Applicants int `gorm:"-" json:"applicants,omitempty"`
}

// ProjectSettings holds per-project compensation configuration. Created
// lazily with defaults the first time it is read.
type ProjectSettings struct {
	SettingsID                int        `gorm:"primaryKey;column:settings_id" json:"settings_id"`
	ProjectID                 int        `gorm:"column:project_id;unique" json:"project_id"`
	ParticipationCompensation float64    `gorm:"column:participation_compensation" json:"participation_compensation"`
	WinnerCompensation        float64    `gorm:"column:winner_compensation" json:"winner_compensation"`
	AutoApproveParticipation  bool       `gorm:"column:auto_approve_participation" json:"auto_approve_participation"`
	CreatedAt                 time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt                 *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// DefaultParticipationCompensation is applied when settings are created lazily.
const DefaultParticipationCompensation = 50.0

// TableName overrides
func (Project) TableName() string {
	return "projects"
}

func (ProjectSettings) TableName() string {
	return "project_settings"
}
