package handler

import (
	"github.com/gin-gonic/gin"

	"plan-it/backend/internal/api/middleware"
	"plan-it/backend/internal/model"
	"plan-it/backend/pkg/response"
)

// MustGetPrincipal 从 Gin 上下文中提取 JWTAuth 注入的 Principal。
// 未注入时写入 401 响应，调用方应在 ok=false 时直接 return。
func MustGetPrincipal(c *gin.Context) (*model.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return nil, false
	}
	return p, true
}
