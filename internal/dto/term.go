package dto

import "time"

// ── Term requests ──

// CreateTermRequest creates a term and mints its invite code.
type CreateTermRequest struct {
	Name       string     `json:"name"        binding:"required,min=1,max=100"`
	Code       string     `json:"code"        binding:"required,min=3,max=40"`
	InviteCode string     `json:"invite_code" binding:"required,min=6,max=64"`
	ExpiresAt  *time.Time `json:"expires_at"`
	MaxUses    *int       `json:"max_uses"    binding:"omitempty,min=1"`
}

// JoinTermRequest presents an invite code.
type JoinTermRequest struct {
	Code string `json:"code" binding:"required,min=1,max=64"`
}

// UpdateTermRequest patches a term; at least one field must be set.
type UpdateTermRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"is_active"`
}

// RotateInviteRequest replaces the invite code and resets its use counter.
type RotateInviteRequest struct {
	InviteCode string     `json:"invite_code" binding:"required,min=6,max=64"`
	ExpiresAt  *time.Time `json:"expires_at"`
	MaxUses    *int       `json:"max_uses"    binding:"omitempty,min=1"`
}

// ── Term responses ──

// TermResponse is the basic term view.
type TermResponse struct {
	TermID    string    `json:"term_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	IsActive  bool      `json:"is_active"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// InviteResponse shows the plaintext code once, right after it is minted.
type InviteResponse struct {
	InviteCode string     `json:"invite_code"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	MaxUses    *int       `json:"max_uses,omitempty"`
	Uses       int        `json:"uses"`
}

// CreateTermResponse is the new term plus its invite.
type CreateTermResponse struct {
	Term   TermResponse   `json:"term"`
	Role   string         `json:"role"`
	Invite InviteResponse `json:"invite"`
}

// JoinTermResponse reports the membership after a join.
type JoinTermResponse struct {
	Term          TermResponse `json:"term"`
	Role          string       `json:"role"`
	AlreadyMember bool         `json:"already_member"`
}

// MyTermResponse is one of the caller's memberships.
type MyTermResponse struct {
	Term     TermResponse `json:"term"`
	Role     string       `json:"role"`
	JoinedAt time.Time    `json:"joined_at"`
}

// AdminTermResponse is a term the caller administers, with invite state.
type AdminTermResponse struct {
	TermResponse
	MemberCount     int64      `json:"member_count"`
	HasInvite       bool       `json:"has_invite"`
	InviteUses      int        `json:"invite_uses"`
	InviteMaxUses   *int       `json:"invite_max_uses,omitempty"`
	InviteExpiresAt *time.Time `json:"invite_expires_at,omitempty"`
}
