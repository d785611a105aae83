package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plan-it/backend/internal/model"
	"plan-it/backend/internal/service"
	pkgerrors "plan-it/backend/pkg/errors"
	"plan-it/backend/pkg/response"
)

// 上下文键
const (
	ContextKeyPrincipal = "principal"
	ContextKeyUserID    = "user_id"
	ContextKeyRole      = "role"
)

// PrincipalResolver 校验 Access Token 并读取用户当前状态
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, accessToken string) (*model.Principal, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取 Access Token，并按存储中的当前记录解析 Principal。
// 角色不从 token 读取，降级后旧 token 立即失去管理权限。
func JWTAuth(resolver PrincipalResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Unauthorized(c, response.CodeUnauthorized, "认证头格式无效")
			c.Abort()
			return
		}

		principal, err := resolver.ResolvePrincipal(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenExpired):
				response.Unauthorized(c, response.CodeTokenExpired, "Token 已过期")
			case pkgerrors.KindOf(err) == pkgerrors.KindInvalidToken,
				pkgerrors.KindOf(err) == pkgerrors.KindAuthentication:
				response.Unauthorized(c, response.CodeUnauthorized, "Token 无效或用户不存在")
			default:
				logger.Error("解析调用方身份失败", zap.Error(err))
				response.InternalError(c)
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyPrincipal, principal)
		c.Set(ContextKeyUserID, principal.UserID)
		c.Set(ContextKeyRole, string(principal.Role))

		c.Next()
	}
}

// RequireAdmin 仅 admin / super_admin 可访问
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(model.RoleAdmin, model.RoleSuperAdmin)
}

// RequireRole 角色权限中间件，须在 JWTAuth 之后使用
func RequireRole(allowed ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			response.Unauthorized(c, response.CodeUnauthorized, "未认证")
			c.Abort()
			return
		}

		for _, r := range allowed {
			if p.Role == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, response.CodeForbidden, "无权限访问")
		c.Abort()
	}
}

// PrincipalFrom 从上下文读取 JWTAuth 注入的 Principal
func PrincipalFrom(c *gin.Context) (*model.Principal, bool) {
	v, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil, false
	}
	p, ok := v.(*model.Principal)
	return p, ok && p != nil
}
