package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User maps users. Role is the legacy global role; term access is decided by TermMembership.
type User struct {
	UserID       string     `gorm:"type:uuid;primaryKey"                         json:"user_id"`
	Name         string     `gorm:"type:varchar(100);not null"                   json:"name"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                   json:"-"`
	Role         string     `gorm:"type:varchar(20);not null;default:'Member'"   json:"role"`
	IsActive     bool       `gorm:"not null;default:true"                        json:"is_active"`
	LastLoginAt  *time.Time `                                                     json:"last_login_at,omitempty"`
	BaseModel
}

// TableName maps the table name.
func (User) TableName() string { return "users" }

// BeforeCreate assigns the primary key.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.UserID == "" {
		u.UserID = uuid.NewString()
	}
	return nil
}
