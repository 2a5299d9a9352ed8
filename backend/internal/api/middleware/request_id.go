package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// KeyRequestID 请求 ID 的上下文键
const KeyRequestID = "request_id"

const headerRequestID = "X-Request-ID"

// requestIDMaxLen 限制客户端传入 ID 的长度
const requestIDMaxLen = 64

// RequestID 接受合法的 X-Request-ID，否则生成 UUID，并回写响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(headerRequestID)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(KeyRequestID, rid)
		c.Header(headerRequestID, rid)

		c.Next()
	}
}

// validRequestID 仅允许 [A-Za-z0-9._-]
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for _, r := range rid {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
