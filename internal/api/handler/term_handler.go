package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/service"
	"github.com/simonbalanoff/SigEpRush-API/pkg/response"
)

// TermHandler serves /terms and the invite/join flow.
type TermHandler struct {
	termSvc service.TermService
}

// NewTermHandler creates a TermHandler.
func NewTermHandler(termSvc service.TermService) *TermHandler {
	return &TermHandler{termSvc: termSvc}
}

// CreateTerm POST /api/v1/terms
// Any authenticated user; the caller becomes the term's Admin.
func (h *TermHandler) CreateTerm(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.termSvc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.Created(c, result)
}

// JoinTerm POST /api/v1/terms/join
func (h *TermHandler) JoinTerm(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.JoinTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.termSvc.Join(c.Request.Context(), userID, req.Code)
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMine GET /api/v1/terms/mine
func (h *TermHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.termSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListAdmin GET /api/v1/terms/admin
func (h *TermHandler) ListAdmin(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.termSvc.ListAdmin(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// UpdateTerm PATCH /api/v1/terms/:termId (term Admin)
func (h *TermHandler) UpdateTerm(c *gin.Context) {
	termID, ok := MustGetTermID(c)
	if !ok {
		return
	}

	var req dto.UpdateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.termSvc.Update(c.Request.Context(), termID, &req)
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, result)
}

// RotateInvite POST /api/v1/terms/:termId/invite (term Admin)
func (h *TermHandler) RotateInvite(c *gin.Context) {
	termID, ok := MustGetTermID(c)
	if !ok {
		return
	}

	var req dto.RotateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.termSvc.RotateInvite(c.Request.Context(), termID, &req)
	if err != nil {
		h.handleTermError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *TermHandler) handleTermError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInviteCode):
		response.NotFound(c, 13001, "invalid_code", "invalid invite code")
	case errors.Is(err, service.ErrInviteExpired):
		response.Gone(c, 13002, "expired", "invite code expired")
	case errors.Is(err, service.ErrInviteLimitReached):
		response.Conflict(c, 13003, "limit_reached", "invite code use limit reached")
	case errors.Is(err, service.ErrTermCodeExists):
		response.Conflict(c, 13004, "term_code_exists", "term code already exists")
	case errors.Is(err, service.ErrInviteCodeInUse):
		response.Conflict(c, 13005, "invite_code_in_use", "invite code already in use")
	case errors.Is(err, service.ErrInviteExpiryPast):
		response.BadRequest(c, 13006, "invalid_expiry", "expires_at must be in the future")
	case errors.Is(err, service.ErrNoChanges):
		response.BadRequest(c, 13007, "no_changes", "no changes")
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 13008, "term_not_found", "term not found")
	default:
		response.InternalError(c)
	}
}
