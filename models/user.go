package models

import (
	"time"

	"gorm.io/datatypes"
)

// User roles. "developer" is what the product calls freelancers.
const (
	RoleCompany   = "company"
	RoleDeveloper = "developer"
)

type User struct {
	UserID   string     `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email    string     `gorm:"column:email;unique" json:"email"`
	Name     string     `gorm:"column:name" json:"name"`
	Role     string     `gorm:"column:role" json:"role"`
	Password string     `gorm:"column:password" json:"-"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// FreelancerProfile holds the public profile a developer fills in after
// picking the developer role.
type FreelancerProfile struct {
	ProfileID         int            `gorm:"primaryKey;column:profile_id" json:"profile_id"`
	UserID            string         `gorm:"column:user_id;unique" json:"user_id"`
	ProfessionalTitle string         `gorm:"column:professional_title" json:"professional_title"`
	About             string         `gorm:"column:about" json:"about"`
	HourlyRate        float64        `gorm:"column:hourly_rate" json:"hourly_rate"`
	Availability      string         `gorm:"column:availability" json:"availability"`
	Skills            datatypes.JSON `gorm:"column:skills" json:"skills"`
	CreatedAt         time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         *time.Time     `gorm:"column:updated_at" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// UserToken stores refresh and password reset tokens.
type UserToken struct {
	TokenID   int        `gorm:"primaryKey;column:token_id" json:"token_id"`
	UserID    string     `gorm:"column:user_id" json:"user_id"`
	TokenHash string     `gorm:"column:token_hash" json:"-"`
	TokenType string     `gorm:"column:token_type" json:"token_type"`
	IsRevoked bool       `gorm:"column:is_revoked" json:"is_revoked"`
	ExpiresAt time.Time  `gorm:"column:expires_at" json:"expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (FreelancerProfile) TableName() string {
	return "freelancer_profiles"
}

func (UserToken) TableName() string {
	return "user_tokens"
}
