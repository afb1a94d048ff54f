package middleware

import (
	"net/http"
	"strings"

	"github.com/Christentimmy/CasaRanche-Backend/pkg/response"
	"github.com/Christentimmy/CasaRanche-Backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ContextUserID 认证通过后存入 gin 上下文的用户ID键
const ContextUserID = "userID"

// AuthMiddleware JWT认证中间件
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "Authorization header is required")
			c.Abort()
			return
		}

		// 检查格式 "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(secret, parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Next()
	}
}

// UserID 读取当前调用者ID，未认证时返回空串
func UserID(c *gin.Context) string {
	val, _ := c.Get(ContextUserID)
	if str, ok := val.(string); ok {
		return str
	}
	return ""
}
