package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/service"
	"github.com/simonbalanoff/SigEpRush-API/pkg/response"
)

// MembershipHandler serves /terms/:termId/members (term Admin).
type MembershipHandler struct {
	membershipSvc service.MembershipService
}

// NewMembershipHandler creates a MembershipHandler.
func NewMembershipHandler(membershipSvc service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipSvc: membershipSvc}
}

// ListMembers GET /api/v1/terms/:termId/members
func (h *MembershipHandler) ListMembers(c *gin.Context) {
	termID, ok := MustGetTermID(c)
	if !ok {
		return
	}

	members, err := h.membershipSvc.ListMembers(c.Request.Context(), termID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, members)
}

// UpdateRole PATCH /api/v1/terms/:termId/members/role
func (h *MembershipHandler) UpdateRole(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	termID, ok := MustGetTermID(c)
	if !ok {
		return
	}

	var req dto.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	member, err := h.membershipSvc.UpdateRole(c.Request.Context(), termID, callerID, &req)
	if err != nil {
		handleMembershipError(c, err)
		return
	}

	response.OK(c, member)
}

// membershipErrorHandled maps the authorization errors every term-scoped service returns.
// It reports false when err is not one of them.
func membershipErrorHandled(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrNotMember):
		response.Forbidden(c, 10003, "not_a_member", "not a member of this term")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "forbidden", "role not allowed for this action")
	default:
		return false
	}
	return true
}

func handleMembershipError(c *gin.Context, err error) {
	if membershipErrorHandled(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrMembershipNotFound):
		response.NotFound(c, 14001, "membership_not_found", "membership not found")
	case errors.Is(err, service.ErrSelfDemotion):
		response.BadRequest(c, 14002, "self_demotion", "admins cannot demote themselves")
	default:
		response.InternalError(c)
	}
}
