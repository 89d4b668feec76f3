package dto

import "time"

// MemberResponse is one row of a term's member list.
type MemberResponse struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// UpdateMemberRoleRequest changes a member's term role.
type UpdateMemberRoleRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role"    binding:"required,oneof=Admin Adder Member"`
}
