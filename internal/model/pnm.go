package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PNM statuses.
const (
	PNMStatusNew      = "new"
	PNMStatusInvited  = "invited"
	PNMStatusBid      = "bid"
	PNMStatusDeclined = "declined"
)

// PNM maps pnms, a recruitment candidate scoped to one term.
//
// AvgScore, DistScore, CountRatings and LastRatedAt are written only by the
// aggregate recompute and are all NULL while the candidate has no visible ratings.
type PNM struct {
	PNMID         string     `gorm:"column:pnm_id;type:uuid;primaryKey"       json:"pnm_id"`
	TermID        string     `gorm:"type:uuid;not null;index"                json:"term_id"`
	FirstName     string     `gorm:"type:varchar(100);not null"              json:"first_name"`
	LastName      string     `gorm:"type:varchar(100);not null"              json:"last_name"`
	PreferredName *string    `gorm:"type:varchar(100)"                       json:"preferred_name,omitempty"`
	ClassYear     *int       `                                                json:"class_year,omitempty"`
	Major         *string    `gorm:"type:varchar(100)"                       json:"major,omitempty"`
	GPA           *float64   `gorm:"column:gpa;type:numeric(3,2)"            json:"gpa,omitempty"`
	Phone         *string    `gorm:"type:varchar(40)"                        json:"phone,omitempty"`
	Email         *string    `gorm:"type:varchar(255)"                       json:"email,omitempty"`
	PhotoURL      *string    `gorm:"type:varchar(1024)"                      json:"photo_url,omitempty"`
	PhotoKey      *string    `gorm:"type:varchar(512)"                       json:"-"`
	Status        string     `gorm:"type:varchar(20);not null;default:'new'" json:"status"`
	CreatedBy     *string    `gorm:"type:uuid"                               json:"created_by,omitempty"`
	AvgScore      *float64   `gorm:"type:numeric(4,1)"                       json:"avg_score,omitempty"`
	DistScore     IntArray   `                                                json:"dist_score,omitempty"`
	CountRatings  *int       `                                                json:"count_ratings,omitempty"`
	LastRatedAt   *time.Time `                                                json:"last_rated_at,omitempty"`
	BaseModel

	Tags []PNMTag `gorm:"foreignKey:PNMID;references:PNMID" json:"-"`
}

// TableName maps the table name.
func (PNM) TableName() string { return "pnms" }

// BeforeCreate assigns the primary key.
func (p *PNM) BeforeCreate(*gorm.DB) error {
	if p.PNMID == "" {
		p.PNMID = uuid.NewString()
	}
	return nil
}

// TagNames flattens the loaded tag rows.
func (p *PNM) TagNames() []string {
	out := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		out = append(out, t.Tag)
	}
	return out
}

// ValidPNMStatus reports whether s is a known status.
func ValidPNMStatus(s string) bool {
	switch s {
	case PNMStatusNew, PNMStatusInvited, PNMStatusBid, PNMStatusDeclined:
		return true
	}
	return false
}

// PNMTag maps pnm_tags, one row per (candidate, tag).
type PNMTag struct {
	PNMID string `gorm:"column:pnm_id;type:uuid;primaryKey"  json:"pnm_id"`
	Tag   string `gorm:"type:varchar(50);primaryKey;index"   json:"tag"`
}

// TableName maps the table name.
func (PNMTag) TableName() string { return "pnm_tags" }
