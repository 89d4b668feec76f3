package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/service"
	"github.com/simonbalanoff/SigEpRush-API/pkg/response"
)

// PNMHandler serves candidate routes.
//
// Term-path routes are authorized by the TermMember middleware; /pnms/:id
// routes are authorized by the service against the candidate's own term.
type PNMHandler struct {
	pnmSvc service.PNMService
}

// NewPNMHandler creates a PNMHandler.
func NewPNMHandler(pnmSvc service.PNMService) *PNMHandler {
	return &PNMHandler{pnmSvc: pnmSvc}
}

// CreatePNM POST /api/v1/terms/:termId/pnms (Admin|Adder)
func (h *PNMHandler) CreatePNM(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	termID, ok := MustGetTermID(c)
	if !ok {
		return
	}

	var req dto.CreatePNMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.pnmSvc.Create(c.Request.Context(), termID, userID, &req)
	if err != nil {
		h.handlePNMError(c, err)
		return
	}

	response.Created(c, result)
}

// ListPNMs GET /api/v1/terms/:termId/pnms
func (h *PNMHandler) ListPNMs(c *gin.Context) {
	termID, ok := MustGetTermID(c)
	if !ok {
		return
	}

	var req dto.ListPNMRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	items, total, err := h.pnmSvc.List(c.Request.Context(), termID, &req)
	if err != nil {
		h.handlePNMError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// GetPNM GET /api/v1/pnms/:id
func (h *PNMHandler) GetPNM(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.pnmSvc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.handlePNMError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdatePNM PATCH /api/v1/pnms/:id
func (h *PNMHandler) UpdatePNM(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePNMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.pnmSvc.Update(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.handlePNMError(c, err)
		return
	}

	response.OK(c, result)
}

// DeletePNM DELETE /api/v1/pnms/:id
func (h *PNMHandler) DeletePNM(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.pnmSvc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.handlePNMError(c, err)
		return
	}

	response.NoContent(c)
}

// AttachPhoto POST /api/v1/pnms/:id/photo/attach
func (h *PNMHandler) AttachPhoto(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AttachPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.pnmSvc.AttachPhoto(c.Request.Context(), userID, c.Param("id"), req.Key)
	if err != nil {
		h.handlePNMError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *PNMHandler) handlePNMError(c *gin.Context, err error) {
	if membershipErrorHandled(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrPNMNotFound):
		response.NotFound(c, 15001, "pnm_not_found", "candidate not found")
	case errors.Is(err, service.ErrInvalidSort):
		response.BadRequest(c, 15002, "invalid_sort", err.Error())
	case errors.Is(err, service.ErrNoChanges):
		response.BadRequest(c, 15003, "no_changes", "no changes")
	case errors.Is(err, service.ErrStorageDisabled):
		response.Error(c, http.StatusServiceUnavailable, 15004, "storage_disabled", "photo storage is not configured")
	default:
		response.InternalError(c)
	}
}
