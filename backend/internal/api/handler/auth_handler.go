package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shiftcare/backend/pkg/response"
)

// TokenRevoker 将令牌 jti 拉黑直至过期
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthHandler 令牌注销；登录与刷新由身份服务负责
type AuthHandler struct {
	revoker TokenRevoker
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthHandler 创建 AuthHandler，revoker 可为 nil
func NewAuthHandler(revoker TokenRevoker, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{revoker: revoker, logger: logger, now: time.Now}
}

// Logout 注销当前令牌
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	jti, exp := tokenIdentity(c)
	if jti == "" {
		response.OK(c, nil)
		return
	}
	if h.revoker == nil {
		h.logger.Warn("logout without token blacklist", zap.String("staff_id", actor.StaffID))
		response.OK(c, nil)
		return
	}

	ttl := exp.Sub(h.now())
	if ttl <= 0 {
		response.OK(c, nil)
		return
	}
	if err := h.revoker.BlacklistToken(c.Request.Context(), jti, ttl); err != nil {
		h.logger.Error("blacklist token failed", zap.String("staff_id", actor.StaffID), zap.Error(err))
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
