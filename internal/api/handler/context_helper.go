package handler

import (
	"github.com/gin-gonic/gin"

	"clinsched/backend/pkg/jwt"
	"clinsched/backend/pkg/response"
)

// MustGetMothraID 从 Gin 上下文中安全提取 mothra_id。
// 如果认证中间件未正确注入 mothra_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetMothraID(c *gin.Context) (string, bool) {
	v, exists := c.Get("mothra_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClaims 从 Gin 上下文中安全提取完整会话声明。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}
