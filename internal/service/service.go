package service

import (
	"go.uber.org/zap"

	"plan-it/backend/config"
	"plan-it/backend/internal/repository"
	"plan-it/backend/pkg/jwt"
	"plan-it/backend/pkg/mailer"
	"plan-it/backend/pkg/metrics"
	"plan-it/backend/pkg/mq"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	Verification VerificationService
	Admin        AdminService
}

// Deps Service 依赖的外部组件；Metrics 可为 nil
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Mailer    mailer.Mailer
	Publisher mq.Publisher
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	creds := NewCredentialService(d.Config.Auth.BcryptCost, d.JWT)
	policy := NewRegistrationPolicy(d.Config.Auth.StudentEmailDomain)

	publisher := d.Publisher
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}

	return &Service{
		Auth:         NewAuthService(d.Config, d.Repo, creds, policy, d.Mailer, d.Metrics, d.Logger),
		Verification: NewVerificationService(d.Repo, publisher, d.Metrics, d.Logger),
		Admin:        NewAdminService(d.Config, d.Repo, creds, d.Logger),
	}
}
