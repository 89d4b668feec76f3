package dto

import "time"

// ── Candidate requests ──

// CreatePNMRequest creates a candidate in the term from the path.
type CreatePNMRequest struct {
	FirstName     string   `json:"first_name"     binding:"required,min=1,max=100"`
	LastName      string   `json:"last_name"      binding:"required,min=1,max=100"`
	PreferredName *string  `json:"preferred_name" binding:"omitempty,max=100"`
	ClassYear     *int     `json:"class_year"     binding:"omitempty,min=1900,max=3000"`
	Major         *string  `json:"major"          binding:"omitempty,max=100"`
	GPA           *float64 `json:"gpa"            binding:"omitempty,min=0,max=4"`
	Phone         *string  `json:"phone"          binding:"omitempty,max=40"`
	Email         *string  `json:"email"          binding:"omitempty,email,max=255"`
	PhotoKey      *string  `json:"photo_key"      binding:"omitempty,max=512"`
	Tags          []string `json:"tags"           binding:"omitempty,max=20,dive,min=1,max=50"`
	Status        string   `json:"status"         binding:"omitempty,oneof=new invited bid declined"`
}

// UpdatePNMRequest is a partial update. Tags, when present, replaces the whole set.
type UpdatePNMRequest struct {
	FirstName     *string   `json:"first_name"     binding:"omitempty,min=1,max=100"`
	LastName      *string   `json:"last_name"      binding:"omitempty,min=1,max=100"`
	PreferredName *string   `json:"preferred_name" binding:"omitempty,max=100"`
	ClassYear     *int      `json:"class_year"     binding:"omitempty,min=1900,max=3000"`
	Major         *string   `json:"major"          binding:"omitempty,max=100"`
	GPA           *float64  `json:"gpa"            binding:"omitempty,min=0,max=4"`
	Phone         *string   `json:"phone"          binding:"omitempty,max=40"`
	Email         *string   `json:"email"          binding:"omitempty,email,max=255"`
	Tags          *[]string `json:"tags"           binding:"omitempty,max=20,dive,min=1,max=50"`
	Status        *string   `json:"status"         binding:"omitempty,oneof=new invited bid declined"`
}

// ListPNMRequest filters, sorts and pages the candidate list.
type ListPNMRequest struct {
	Q         string `form:"q"          binding:"omitempty,max=100"`
	Status    string `form:"status"     binding:"omitempty,oneof=new invited bid declined"`
	ClassYear *int   `form:"class_year"`
	Tag       string `form:"tag"        binding:"omitempty,max=50"`
	Sort      string `form:"sort"       binding:"omitempty,max=200"`
	PaginationRequest
}

// AttachPhotoRequest points a candidate at an uploaded object.
type AttachPhotoRequest struct {
	Key string `json:"key" binding:"required,min=1,max=512"`
}

// ── Candidate responses ──

// AggregateResponse is the derived rating summary. Absent when there are no ratings.
type AggregateResponse struct {
	AvgScore     float64   `json:"avg_score"`
	DistScore    []int     `json:"dist_score"` // index = score 0..10
	CountRatings int       `json:"count_ratings"`
	LastRatedAt  time.Time `json:"last_rated_at"`
}

// PNMResponse is the candidate view.
type PNMResponse struct {
	PNMID         string             `json:"pnm_id"`
	TermID        string             `json:"term_id"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	PreferredName *string            `json:"preferred_name,omitempty"`
	ClassYear     *int               `json:"class_year,omitempty"`
	Major         *string            `json:"major,omitempty"`
	GPA           *float64           `json:"gpa,omitempty"`
	Phone         *string            `json:"phone,omitempty"`
	Email         *string            `json:"email,omitempty"`
	PhotoURL      *string            `json:"photo_url,omitempty"`
	Tags          []string           `json:"tags"`
	Status        string             `json:"status"`
	CreatedBy     *string            `json:"created_by,omitempty"`
	Aggregate     *AggregateResponse `json:"aggregate,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
