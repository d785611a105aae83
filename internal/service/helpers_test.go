package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"plan-it/backend/config"
	"plan-it/backend/internal/model"
	"plan-it/backend/internal/repository"
	"plan-it/backend/pkg/jwt"
	"plan-it/backend/pkg/metrics"
)

// ── 测试辅助 ──

type testEnv struct {
	cfg       *config.Config
	svc       *Service
	users     *mockUserRepo
	tokens    *mockEmailVerificationRepo
	invites   *mockInviteCodeRepo
	stats     *mockStatsRepo
	mailer    *mockMailer
	publisher *mockPublisher
	jwtMgr    *jwt.Manager
	metrics   *metrics.Metrics
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, BaseURL: "http://localhost:5173"},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
			BcryptCost:              bcrypt.MinCost,
			StudentEmailDomain:      "vitapstudent.ac.in",
			EmailVerificationTTL:    24 * time.Hour,
			InviteTTL:               7 * 24 * time.Hour,
		},
	}
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		cfg:       testConfig(),
		users:     newMockUserRepo(),
		tokens:    newMockEmailVerificationRepo(),
		invites:   newMockInviteCodeRepo(),
		stats:     newMockStatsRepo(),
		mailer:    &mockMailer{},
		publisher: &mockPublisher{},
		metrics:   metrics.New(),
	}
	env.jwtMgr = jwt.NewManager(&env.cfg.Auth)

	repo := &repository.Repository{
		User:              env.users,
		EmailVerification: env.tokens,
		InviteCode:        env.invites,
		Stats:             env.stats,
	}
	env.svc = NewService(Deps{
		Config:    env.cfg,
		Repo:      repo,
		JWT:       env.jwtMgr,
		Mailer:    env.mailer,
		Publisher: env.publisher,
		Metrics:   env.metrics,
		Logger:    zap.NewNop(),
	})
	return env
}

// seedUser 直接写入一个用户，密码固定为 password123
func (e *testEnv) seedUser(t *testing.T, email string, userType model.UserType, role model.Role, status model.VerificationStatus) *model.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	u := &model.User{
		Name:               "Test " + string(userType),
		Email:              email,
		PasswordHash:       string(hash),
		UserType:           userType,
		Role:               role,
		VerificationStatus: status,
	}
	if userType == model.UserTypeStudent {
		u.VitapID, u.Year, u.Branch = "21BCE1000", "2", "CSE"
	}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("seedUser 失败: %v", err)
	}
	return u
}

func (e *testEnv) adminPrincipal(t *testing.T) *model.Principal {
	t.Helper()
	admin := e.seedUser(t, "admin@planit.local", model.UserTypeAdmin, model.RoleAdmin, model.VerificationApproved)
	return model.NewPrincipal(admin)
}

func (e *testEnv) superAdminPrincipal(t *testing.T) *model.Principal {
	t.Helper()
	sa := e.seedUser(t, "root@planit.local", model.UserTypeAdmin, model.RoleSuperAdmin, model.VerificationApproved)
	return model.NewPrincipal(sa)
}
