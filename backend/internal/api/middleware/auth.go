package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"shiftcare/backend/internal/swap"
	"shiftcare/backend/pkg/jwt"
	"shiftcare/backend/pkg/response"
)

// 认证中间件写入的上下文键
const (
	KeyStaffID        = "staff_id"
	KeyOrganizationID = "organization_id"
	KeyRole           = "role"
	KeyTokenJTI       = "token_jti"
	KeyTokenExp       = "token_exp"
)

// TokenBlacklist 查询已注销的令牌
type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth 校验 Authorization: Bearer <token>，blacklist 为 nil 时跳过注销检查
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, response.CodeUnauthenticated, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, response.CodeUnauthenticated, "malformed authorization header")
			c.Abort()
			return
		}

		authenticate(c, jwtMgr, blacklist, parts[1])
	}
}

// QueryTokenAuth 从 token 查询参数读取令牌，浏览器无法为 websocket 升级请求设置请求头
func QueryTokenAuth(jwtMgr *jwt.Manager, blacklist TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			response.Unauthorized(c, response.CodeUnauthenticated, "missing token")
			c.Abort()
			return
		}
		authenticate(c, jwtMgr, blacklist, token)
	}
}

func authenticate(c *gin.Context, jwtMgr *jwt.Manager, blacklist TokenBlacklist, token string) {
	claims, err := jwtMgr.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, response.CodeUnauthenticated, "token invalid or expired")
		c.Abort()
		return
	}

	role := swap.Role(claims.Role)
	if !role.Valid() {
		response.Unauthorized(c, response.CodeUnauthenticated, "token role invalid")
		c.Abort()
		return
	}

	if blacklist != nil && claims.ID != "" {
		revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
		// Redis errors fail open, same as the rate limiter
		if err == nil && revoked {
			response.Unauthorized(c, response.CodeUnauthenticated, "token revoked")
			c.Abort()
			return
		}
	}

	c.Set(KeyStaffID, claims.StaffID)
	c.Set(KeyOrganizationID, claims.OrganizationID)
	c.Set(KeyRole, role)
	c.Set(KeyTokenJTI, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(KeyTokenExp, claims.ExpiresAt.Time)
	}

	c.Next()
}

// RoleAuth 按令牌角色拦截；管理操作在 service 层仍会核对成员表
func RoleAuth(allowedRoles ...swap.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(KeyRole)
		if !exists {
			response.Unauthorized(c, response.CodeUnauthenticated, "not authenticated")
			c.Abort()
			return
		}

		userRole, _ := v.(swap.Role)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, response.CodeForbidden, "permission denied")
		c.Abort()
	}
}
