package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/service"
	"github.com/simonbalanoff/SigEpRush-API/pkg/response"
)

// UserHandler serves /users (global Admin).
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// ListUsers GET /api/v1/users?q=
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	users, err := h.userSvc.List(c.Request.Context(), req.Q)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, users)
}

// UpdateRole PATCH /api/v1/users/:userId/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userSvc.UpdateRole(c.Request.Context(), callerID, c.Param("userId"), req.Role)
	if err != nil {
		h.handleUserError(c, err)
		return
	}

	response.OK(c, user)
}

func (h *UserHandler) handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "user_not_found", "user not found")
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, 12002, "invalid_role", "unknown role")
	case errors.Is(err, service.ErrSelfDemotion):
		response.BadRequest(c, 12003, "self_demotion", "admins cannot demote themselves")
	default:
		response.InternalError(c)
	}
}
