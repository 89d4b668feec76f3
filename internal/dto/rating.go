package dto

import "time"

// UpsertRatingRequest creates or overwrites the caller's rating.
type UpsertRatingRequest struct {
	Score   *int    `json:"score"   binding:"required,min=0,max=10"`
	Comment *string `json:"comment" binding:"omitempty,max=500"`
}

// SetRatingVisibilityRequest hides or unhides a rating.
type SetRatingVisibilityRequest struct {
	IsHidden *bool `json:"is_hidden" binding:"required"`
}

// RatingResponse is one rating with the rater's display name.
type RatingResponse struct {
	RatingID  string         `json:"rating_id"`
	TermID    string         `json:"term_id"`
	PNMID     string         `json:"pnm_id"`
	RaterID   string         `json:"rater_id"`
	RaterName string         `json:"rater_name,omitempty"`
	Score     int            `json:"score"`
	Comment   *string        `json:"comment,omitempty"`
	Reactions map[string]int `json:"reactions"`
	IsHidden  bool           `json:"is_hidden"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ── Reactions ──

// ReactionRequest names one emoji.
type ReactionRequest struct {
	Emoji string `json:"emoji" form:"emoji" binding:"required,min=1,max=32"`
}

// ReactionResponse is the rating's reaction counts after the change.
type ReactionResponse struct {
	RatingID  string         `json:"rating_id"`
	Reactions map[string]int `json:"reactions"`
}
