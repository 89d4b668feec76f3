package model

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Rating maps ratings, one per (term_id, pnm_id, rater_id).
// Reactions caches emoji counts; the reactions table is the source of truth.
type Rating struct {
	RatingID  string                             `gorm:"type:uuid;primaryKey"                                        json:"rating_id"`
	TermID    string                             `gorm:"type:uuid;not null;uniqueIndex:idx_rating_triple,priority:1" json:"term_id"`
	PNMID     string                             `gorm:"column:pnm_id;type:uuid;not null;uniqueIndex:idx_rating_triple,priority:2" json:"pnm_id"`
	RaterID   string                             `gorm:"type:uuid;not null;uniqueIndex:idx_rating_triple,priority:3" json:"rater_id"`
	Score     int                                `gorm:"type:smallint;not null"                                      json:"score"`
	Comment   *string                            `gorm:"type:varchar(500)"                                           json:"comment,omitempty"`
	Reactions datatypes.JSONType[map[string]int] `gorm:"not null"                                                    json:"reactions"`
	IsHidden  bool                               `gorm:"not null;default:false"                                      json:"is_hidden"`
	BaseModel

	Rater *User `gorm:"foreignKey:RaterID;references:UserID" json:"rater,omitempty"`
}

// TableName maps the table name.
func (Rating) TableName() string { return "ratings" }

// BeforeCreate assigns the primary key and an empty reaction map.
func (r *Rating) BeforeCreate(*gorm.DB) error {
	if r.RatingID == "" {
		r.RatingID = uuid.NewString()
	}
	if r.Reactions.Data() == nil {
		r.Reactions = datatypes.NewJSONType(map[string]int{})
	}
	return nil
}

// ReactionCounts returns the cached counts, never nil.
func (r *Rating) ReactionCounts() map[string]int {
	counts := r.Reactions.Data()
	if counts == nil {
		return map[string]int{}
	}
	return counts
}
