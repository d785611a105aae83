package handler

import (
	"plan-it/backend/config"
	"plan-it/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth  *AuthHandler
	Admin *AdminHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, authCfg *config.AuthConfig) *Handler {
	return &Handler{
		Auth:  NewAuthHandler(svc.Auth, authCfg),
		Admin: NewAdminHandler(svc.Verification, svc.Admin),
	}
}
