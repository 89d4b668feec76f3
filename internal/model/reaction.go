package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reaction maps reactions: one emoji per user per rating.
type Reaction struct {
	ReactionID string `gorm:"type:uuid;primaryKey"                                             json:"reaction_id"`
	RatingID   string `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_triple,priority:1"    json:"rating_id"`
	UserID     string `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_triple,priority:2"    json:"user_id"`
	Emoji      string `gorm:"type:varchar(32);not null;uniqueIndex:idx_reaction_triple,priority:3" json:"emoji"`
	BaseModel
}

// TableName maps the table name.
func (Reaction) TableName() string { return "reactions" }

// BeforeCreate assigns the primary key.
func (r *Reaction) BeforeCreate(*gorm.DB) error {
	if r.ReactionID == "" {
		r.ReactionID = uuid.NewString()
	}
	return nil
}
