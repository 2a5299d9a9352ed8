package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"shiftcare/backend/internal/dto"
	"shiftcare/backend/internal/service"
	"shiftcare/backend/internal/swap"
	"shiftcare/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出接口
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSwaps 导出换班记录工作簿
// GET /api/v1/export/swaps?from=&to=
func (h *ExportHandler) ExportSwaps(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ExportSwapsRequest
	if !bindQuery(c, &req) {
		return
	}

	buf, filename, err := h.exportSvc.ExportSwaps(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, swap.ErrNotAuthorized):
		response.Forbidden(c, 16001, "only organization owners and admins may export")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.ErrorWithDetails(c, http.StatusBadRequest, 16002, "invalid date range", err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
