package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Term maps terms, one recruitment cycle and the tenant boundary for everything below it.
// Only the sha256 of the lower-cased invite code is stored.
type Term struct {
	TermID          string     `gorm:"type:uuid;primaryKey"                                         json:"term_id"`
	Name            string     `gorm:"type:varchar(100);not null"                                   json:"name"`
	Code            string     `gorm:"type:varchar(40);not null;uniqueIndex:idx_terms_code"         json:"code"`
	IsActive        bool       `gorm:"not null;default:true"                                        json:"is_active"`
	CreatedBy       string     `gorm:"type:uuid;not null"                                           json:"created_by"`
	InviteCodeHash  *string    `gorm:"type:char(64);uniqueIndex:idx_terms_invite_code_hash"         json:"-"`
	InviteExpiresAt *time.Time `                                                                     json:"invite_expires_at,omitempty"`
	InviteMaxUses   *int       `                                                                     json:"invite_max_uses,omitempty"`
	InviteUses      int        `gorm:"not null;default:0"                                           json:"invite_uses"`
	BaseModel
}

// TableName maps the table name.
func (Term) TableName() string { return "terms" }

// BeforeCreate assigns the primary key.
func (t *Term) BeforeCreate(*gorm.DB) error {
	if t.TermID == "" {
		t.TermID = uuid.NewString()
	}
	return nil
}

// InviteExpired reports whether the invite has a deadline that has passed.
func (t *Term) InviteExpired(now time.Time) bool {
	return t.InviteExpiresAt != nil && now.After(*t.InviteExpiresAt)
}

// InviteExhausted reports whether the invite has used up its cap.
func (t *Term) InviteExhausted() bool {
	return t.InviteMaxUses != nil && t.InviteUses >= *t.InviteMaxUses
}
