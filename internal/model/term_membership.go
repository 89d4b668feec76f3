package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TermMembership maps term_memberships; unique per (user_id, term_id).
type TermMembership struct {
	MembershipID string    `gorm:"type:uuid;primaryKey"                                      json:"membership_id"`
	UserID       string    `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_term,priority:1" json:"user_id"`
	TermID       string    `gorm:"type:uuid;not null;uniqueIndex:idx_membership_user_term,priority:2;index" json:"term_id"`
	Role         string    `gorm:"type:varchar(20);not null"                                json:"role"`
	JoinedAt     time.Time `gorm:"not null"                                                 json:"joined_at"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Term *Term `gorm:"foreignKey:TermID;references:TermID" json:"term,omitempty"`
}

// TableName maps the table name.
func (TermMembership) TableName() string { return "term_memberships" }

// BeforeCreate assigns the primary key and join time.
func (m *TermMembership) BeforeCreate(*gorm.DB) error {
	if m.MembershipID == "" {
		m.MembershipID = uuid.NewString()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now()
	}
	return nil
}

// HasRole reports whether the membership role is in allowed. An empty list allows any member.
func (m *TermMembership) HasRole(allowed ...string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if m.Role == r {
			return true
		}
	}
	return false
}
