package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"shiftcare/backend/internal/api/middleware"
	"shiftcare/backend/internal/swap"
	"shiftcare/backend/pkg/response"
)

// MustGetActor 从认证中间件注入的上下文构造操作人。
// 返回 false 时已写入 401，调用方直接返回即可。
func MustGetActor(c *gin.Context) (swap.Actor, bool) {
	staffID := c.GetString(middleware.KeyStaffID)
	orgID := c.GetString(middleware.KeyOrganizationID)
	v, _ := c.Get(middleware.KeyRole)
	role, _ := v.(swap.Role)

	if staffID == "" || orgID == "" || !role.Valid() {
		response.Unauthorized(c, response.CodeUnauthenticated, "not authenticated")
		return swap.Actor{}, false
	}
	return swap.Actor{StaffID: staffID, OrganizationID: orgID, Role: role}, true
}

// tokenIdentity 返回当前令牌的 jti 与过期时间
func tokenIdentity(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.KeyTokenJTI)
	exp := c.GetTime(middleware.KeyTokenExp)
	return jti, exp
}

// bindJSON 失败时写入 413 或 400
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.PayloadTooLarge(c)
			return false
		}
		response.InvalidParams(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		response.InvalidParams(c, err)
		return false
	}
	return true
}
