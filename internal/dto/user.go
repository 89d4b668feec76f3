package dto

import "time"

// UserResponse is the public view of a user.
type UserResponse struct {
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UserListRequest filters the admin user list.
type UserListRequest struct {
	Q string `form:"q" binding:"omitempty,max=100"`
}

// UpdateUserRoleRequest changes a user's global role.
type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=Admin Adder Member"`
}
