package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftcare/backend/internal/dto"
	"shiftcare/backend/internal/service"
	"shiftcare/backend/internal/swap"
	"shiftcare/backend/pkg/response"
)

// SwapHandler 换班申请接口
type SwapHandler struct {
	swapSvc service.SwapService
}

// NewSwapHandler 创建 SwapHandler
func NewSwapHandler(swapSvc service.SwapService) *SwapHandler {
	return &SwapHandler{swapSvc: swapSvc}
}

// Create 发起换班
// POST /api/v1/swap-requests
func (h *SwapHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.CreateSwapRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.swapSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.Created(c, result)
}

// List 当前员工可见的换班申请
// GET /api/v1/swap-requests
func (h *SwapHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.SwapRequestListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.swapSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListPendingAdmin 待管理员审批的申请
// GET /api/v1/swap-requests/pending-admin
func (h *SwapHandler) ListPendingAdmin(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.PaginationRequest
	if !bindQuery(c, &req) {
		return
	}

	list, total, err := h.swapSvc.ListPendingAdmin(c.Request.Context(), actor, &req)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 申请详情
// GET /api/v1/swap-requests/:id
func (h *SwapHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.OK(c, result)
}

// Respond 目标员工接受或拒绝
// POST /api/v1/swap-requests/:id/respond
func (h *SwapHandler) Respond(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.RespondSwapRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.swapSvc.Respond(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.OK(c, result)
}

// Resolve 管理员批准或驳回
// POST /api/v1/swap-requests/:id/resolve
func (h *SwapHandler) Resolve(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	var req dto.ResolveSwapRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.swapSvc.ResolveAdmin(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.OK(c, result)
}

// Cancel 申请人撤回
// POST /api/v1/swap-requests/:id/cancel
func (h *SwapHandler) Cancel(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.swapSvc.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleSwapError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *SwapHandler) handleSwapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, swap.ErrNotFound):
		response.NotFound(c, 17001, "swap request not found")
	case errors.Is(err, swap.ErrNotEligible):
		response.Forbidden(c, 17002, "you are not eligible for this action")
	case errors.Is(err, swap.ErrNotAuthorized):
		response.Forbidden(c, 17003, "only organization owners and admins may do this")
	case errors.Is(err, swap.ErrInvalidState):
		response.Conflict(c, 17004, "swap request is not in a state that allows this action")
	case errors.Is(err, swap.ErrInvalidDecision):
		response.BadRequest(c, 17005, "invalid decision")
	case errors.Is(err, swap.ErrShiftNotFound):
		response.NotFound(c, 17006, "shift not found")
	case errors.Is(err, swap.ErrShiftUnderOpenSwap):
		response.Conflict(c, 17007, "shift already has an open swap request")
	case errors.Is(err, swap.ErrShiftAlreadyStarted):
		response.Conflict(c, 17008, "shift has already started")
	case errors.Is(err, swap.ErrInvalidTarget):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17009, "invalid swap target", err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
