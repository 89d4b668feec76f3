package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simonbalanoff/SigEpRush-API/internal/dto"
	"github.com/simonbalanoff/SigEpRush-API/internal/service"
	"github.com/simonbalanoff/SigEpRush-API/pkg/response"
)

// UploadHandler serves /uploads.
type UploadHandler struct {
	uploadSvc service.UploadService
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(uploadSvc service.UploadService) *UploadHandler {
	return &UploadHandler{uploadSvc: uploadSvc}
}

// Presign POST /api/v1/uploads/presign
func (h *UploadHandler) Presign(c *gin.Context) {
	var req dto.PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.uploadSvc.Presign(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidContentType):
			response.BadRequest(c, 17001, "invalid_content_type", "content type must be an image")
		case errors.Is(err, service.ErrStorageDisabled):
			response.Error(c, http.StatusServiceUnavailable, 17002, "storage_disabled", "photo storage is not configured")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
