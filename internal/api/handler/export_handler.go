package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/simonbalanoff/SigEpRush-API/internal/service"
	"github.com/simonbalanoff/SigEpRush-API/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves spreadsheet downloads.
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler.
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRanking GET /api/v1/terms/:termId/pnms/export (term Admin)
func (h *ExportHandler) ExportRanking(c *gin.Context) {
	termID, ok := MustGetTermID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportRanking(c.Request.Context(), termID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 18001, "term_not_found", "term not found")
	case errors.Is(err, service.ErrExportNoCandidates):
		response.NotFound(c, 18002, "no_candidates", "term has no candidates")
	default:
		response.InternalError(c)
	}
}
