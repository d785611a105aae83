package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"plan-it/backend/config"
	"plan-it/backend/internal/dto"
	"plan-it/backend/internal/service"
	"plan-it/backend/pkg/response"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	cookie  config.CookieConfig
	// refreshTTL / rememberTTL 决定 Cookie 的 Max-Age
	refreshTTL  time.Duration
	rememberTTL time.Duration
}

// NewAuthHandler 创建 AuthHandler；cfg 为 nil 时使用默认 Cookie 设置
func NewAuthHandler(authSvc service.AuthService, cfg *config.AuthConfig) *AuthHandler {
	h := &AuthHandler{
		authSvc:     authSvc,
		refreshTTL:  24 * time.Hour,
		rememberTTL: 7 * 24 * time.Hour,
	}
	if cfg != nil {
		h.cookie = cfg.Cookie
		if cfg.RefreshTokenTTLDefault > 0 {
			h.refreshTTL = cfg.RefreshTokenTTLDefault
		}
		if cfg.RefreshTokenTTLRemember > 0 {
			h.rememberTTL = cfg.RefreshTokenTTLRemember
		}
	}
	return h
}

// Register 用户注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, h.refreshTTL)
	response.Created(c, result)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	ttl := h.refreshTTL
	if req.RememberMe {
		ttl = h.rememberTTL
	}
	h.setRefreshCookie(c, result.RefreshToken, ttl)
	response.OK(c, result)
}

// RefreshToken 刷新 Token，优先读取 Cookie，其次读取请求体
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(refreshCookieName)
	if token == "" {
		var req dto.RefreshTokenRequest
		_ = c.ShouldBindJSON(&req)
		token = strings.TrimSpace(req.RefreshToken)
	}
	if token == "" {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeParamError, "缺少 refresh token", "refreshToken")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), token)
	if err != nil {
		h.clearRefreshCookie(c)
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, h.refreshTTL)
	response.OK(c, result)
}

// Logout 用户登出
// 服务端不保存会话，仅清除 refresh Cookie；已签发的 access token 在过期前仍然有效
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.clearRefreshCookie(c)
	response.OKMessage(c, "已退出登录")
}

// Me 获取当前用户信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetCurrentUser(c.Request.Context(), p.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, gin.H{"user": result})
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), p.UserID, &req); err != nil {
		respondError(c, err)
		return
	}

	response.OKMessage(c, "密码已修改")
}

// VerifyEmail 使用邮件中的令牌验证邮箱
// POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authSvc.VerifyEmail(c.Request.Context(), strings.TrimSpace(req.Token)); err != nil {
		respondError(c, err)
		return
	}

	response.OKMessage(c, "邮箱验证成功")
}

// ResendVerification 重新发送验证邮件
// POST /api/v1/auth/verify-email/resend
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	p, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	if err := h.authSvc.ResendVerification(c.Request.Context(), p.UserID); err != nil {
		respondError(c, err)
		return
	}

	response.OKMessage(c, "验证邮件已发送")
}

// ── Cookie ──

func (h *AuthHandler) sameSite() http.SameSite {
	switch strings.ToLower(h.cookie.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, ttl time.Duration) {
	if token == "" {
		return
	}
	c.SetSameSite(h.sameSite())
	c.SetCookie(refreshCookieName, token, int(ttl.Seconds()), refreshCookiePath, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(h.sameSite())
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, h.cookie.Domain, h.cookie.Secure, true)
}
