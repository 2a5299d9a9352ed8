package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftcare/backend/internal/dto"
	"shiftcare/backend/internal/service"
	"shiftcare/backend/pkg/response"
)

// ShiftHandler 当前员工的班次
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ListMine GET /api/v1/shifts/me?from=&to=
func (h *ShiftHandler) ListMine(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.MyShiftsRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.shiftSvc.ListMine(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}
	response.OK(c, result)
}

// Calendar GET /api/v1/shifts/me/calendar.ics
func (h *ShiftHandler) Calendar(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.MyShiftsRequest
	if !bindQuery(c, &req) {
		return
	}

	body, err := h.shiftSvc.CalendarICS(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="shifts.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDateRange):
		response.ErrorWithDetails(c, http.StatusBadRequest, 19001, "invalid date range", err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
