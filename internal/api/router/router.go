package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plan-it/backend/config"
	"plan-it/backend/internal/api/handler"
	"plan-it/backend/internal/api/middleware"
	"plan-it/backend/internal/model"
	"plan-it/backend/pkg/metrics"
)

// 请求体上限 1MB
const maxBodyBytes = 1 << 20

// Deps 路由依赖；Limiter 与 Metrics 可为 nil
type Deps struct {
	Config   *config.Config
	Handler  *handler.Handler
	Resolver middleware.PrincipalResolver
	Limiter  middleware.RateLimiter
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(gin.Recovery())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(d.Config.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", d.Metrics.Handler())
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := d.Handler
	jwtAuth := middleware.JWTAuth(d.Resolver, d.Logger)

	// 登录/注册限流；未启用时为空操作
	limit := func(c *gin.Context) { c.Next() }
	if d.Config.RateLimit.Enabled {
		limit = middleware.RateLimit(d.Limiter, d.Config.RateLimit.Limit, d.Config.RateLimit.Window, d.Logger)
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/register", limit, h.Auth.Register)
			auth.POST("/login", limit, h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.POST("/verify-email", h.Auth.VerifyEmail)
		}

		// 认证模块（需要认证）
		authorized := v1.Group("/auth", jwtAuth)
		{
			authorized.POST("/logout", h.Auth.Logout)
			authorized.GET("/me", h.Auth.Me)
			authorized.PUT("/password", h.Auth.ChangePassword)
			authorized.POST("/verify-email/resend", h.Auth.ResendVerification)
		}

		// 管理端：身份与角色每次请求重新读取
		admin := v1.Group("/admin", jwtAuth, middleware.RequireAdmin())
		{
			admin.GET("/dashboard", h.Admin.Dashboard)

			admin.GET("/students", h.Admin.ListStudents)
			admin.GET("/students/export", h.Admin.ExportStudents)
			admin.PUT("/students/:id/verify", h.Admin.VerifyStudent)

			admin.GET("/businesses", h.Admin.ListBusinesses)
			admin.POST("/businesses", h.Admin.CreateBusiness)
			admin.POST("/businesses/invites", h.Admin.CreateBusinessInvite)
			admin.PUT("/businesses/:id/verify", h.Admin.VerifyBusiness)

			admin.PUT("/users/:id/role", middleware.RequireRole(model.RoleSuperAdmin), h.Admin.AssignRole)
		}
	}

	return r
}
