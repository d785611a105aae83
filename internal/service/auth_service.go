package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"plan-it/backend/config"
	"plan-it/backend/internal/dto"
	"plan-it/backend/internal/model"
	"plan-it/backend/internal/repository"
	"plan-it/backend/pkg/mailer"
	"plan-it/backend/pkg/metrics"
)

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, userID string) error
	// ResolvePrincipal 校验 Access Token 并按当前存储状态解析调用方身份
	ResolvePrincipal(ctx context.Context, accessToken string) (*model.Principal, error)
	// EnsureSuperAdmin 按配置创建或提升初始超级管理员，未配置邮箱时跳过
	EnsureSuperAdmin(ctx context.Context, admin config.BootstrapAdmin) error
}

type authService struct {
	cfg     *config.Config
	repo    *repository.Repository
	creds   *CredentialService
	policy  *RegistrationPolicy
	mailer  mailer.Mailer
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	creds *CredentialService,
	policy *RegistrationPolicy,
	m mailer.Mailer,
	mt *metrics.Metrics,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:     cfg,
		repo:    repo,
		creds:   creds,
		policy:  policy,
		mailer:  m,
		metrics: mt,
		logger:  logger,
		now:     time.Now,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	userType, err := s.policy.Validate(req)
	if err != nil {
		s.metrics.ObserveRegistration(registrationLabel(req.UserType), "invalid")
		return nil, err
	}

	hash, err := s.creds.Hash(req.Password)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user := &model.User{
		Name:               strings.TrimSpace(req.Name),
		Email:              email,
		PasswordHash:       hash,
		Phone:              strings.TrimSpace(req.Phone),
		UserType:           userType,
		Role:               model.RoleUser,
		VerificationStatus: model.VerificationApproved,
	}
	if userType.RequiresVerification() {
		user.VerificationStatus = model.VerificationPending
	}
	if userType == model.UserTypeStudent {
		user.VitapID = strings.TrimSpace(req.VitapID)
		user.Year = strings.TrimSpace(req.Year)
		user.Branch = strings.TrimSpace(req.Branch)
	}

	// 商家邀请码先占用，建号失败再归还
	var invite *model.InviteCode
	if userType == model.UserTypeBusiness {
		invite, err = s.claimBusinessInvite(ctx, normalizeInviteCode(req.InviteCode), email)
		if err != nil {
			s.metrics.ObserveRegistration(string(userType), "invalid")
			return nil, err
		}
		user.CreatedBy = invite.CreatedBy
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		if invite != nil {
			if rerr := s.repo.InviteCode.Release(ctx, invite.InviteCodeID); rerr != nil {
				s.logger.Error("归还邀请码失败", zap.String("invite_code_id", invite.InviteCodeID), zap.Error(rerr))
			}
		}
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.ObserveRegistration(string(userType), "duplicate")
			return nil, ErrEmailExists
		}
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	if err := s.sendVerificationEmail(ctx, user); err != nil {
		// 注册已成功，验证邮件可通过 resend 重新发送
		s.logger.Warn("发送验证邮件失败", zap.String("user_id", user.UserID), zap.Error(err))
	}

	s.metrics.ObserveRegistration(string(userType), "success")
	s.logger.Info("用户注册成功",
		zap.String("user_id", user.UserID),
		zap.String("user_type", string(user.UserType)),
		zap.String("verification_status", string(user.VerificationStatus)),
	)

	return s.tokenResponse(user, false)
}

// registrationLabel 非法 user_type 统一记为 unknown，指标序列数保持有界
func registrationLabel(raw string) string {
	t := model.UserType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "unknown"
	}
	return string(t)
}

// normalizeInviteCode 邀请码以大写签发，输入大小写不敏感
func normalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *authService) claimBusinessInvite(ctx context.Context, code, email string) (*model.InviteCode, error) {
	invite, err := s.repo.InviteCode.Claim(ctx, code, email, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInviteCodeInvalid
		}
		s.logger.Error("占用邀请码失败", zap.Error(err))
		return nil, err
	}
	if invite.Purpose != model.InvitePurposeBusiness {
		if rerr := s.repo.InviteCode.Release(ctx, invite.InviteCodeID); rerr != nil {
			s.logger.Error("归还邀请码失败", zap.String("invite_code_id", invite.InviteCodeID), zap.Error(rerr))
		}
		return nil, ErrInviteCodeInvalid
	}
	return invite, nil
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 邮箱不存在也要走一次 bcrypt，响应耗时与密码错误一致
			s.creds.VerifyNoUser(req.Password)
			s.metrics.ObserveLogin("failure")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	if !s.creds.Verify(req.Password, user.PasswordHash) {
		s.metrics.ObserveLogin("failure")
		return nil, ErrInvalidCredentials
	}

	s.metrics.ObserveLogin("success")
	return s.tokenResponse(user, req.RememberMe)
}

// ────────────────────── RefreshToken ──────────────────────

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.creds.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		s.logger.Error("查询用户失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}

	return s.tokenResponse(user, claims.RememberMe)
}

// ────────────────────── GetCurrentUser ──────────────────────

func (s *authService) GetCurrentUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if !s.creds.Verify(req.OldPassword, user.PasswordHash) {
		return ErrOldPasswordMismatch
	}
	if req.OldPassword == req.NewPassword {
		return ErrPasswordUnchanged
	}

	hash, err := s.creds.Hash(req.NewPassword)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return err
	}

	if err := s.repo.User.UpdatePassword(ctx, userID, hash, false); err != nil {
		s.logger.Error("更新密码失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Email verification ──────────────────────

func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	v, err := s.repo.EmailVerification.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		s.logger.Error("查询验证令牌失败", zap.Error(err))
		return err
	}
	if !v.Usable(s.now()) {
		return ErrInvalidVerificationToken
	}

	// 条件更新保证同一令牌只能使用一次
	if err := s.repo.EmailVerification.MarkConsumed(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		s.logger.Error("标记验证令牌失败", zap.Error(err))
		return err
	}

	if err := s.repo.User.MarkEmailVerified(ctx, v.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("标记邮箱已验证失败", zap.String("user_id", v.UserID), zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) ResendVerification(ctx context.Context, userID string) error {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return ErrEmailAlreadyVerified
	}

	if err := s.repo.EmailVerification.DeleteByUser(ctx, userID); err != nil {
		s.logger.Error("作废旧验证令牌失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return s.sendVerificationEmail(ctx, user)
}

func (s *authService) sendVerificationEmail(ctx context.Context, user *model.User) error {
	token, err := randomToken(32)
	if err != nil {
		return err
	}

	now := s.now()
	v := &model.EmailVerification{
		Token:     token,
		UserID:    user.UserID,
		ExpiresAt: now.Add(s.cfg.Auth.EmailVerificationTTL),
		CreatedAt: now,
	}
	if err := s.repo.EmailVerification.Create(ctx, v); err != nil {
		return fmt.Errorf("保存验证令牌失败: %w", err)
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", strings.TrimRight(s.cfg.Server.BaseURL, "/"), token)
	body := fmt.Sprintf("你好 %s，\n\n请在 %s 内打开以下链接完成邮箱验证：\n%s\n",
		user.Name, s.cfg.Auth.EmailVerificationTTL, link)

	return s.mailer.Send(ctx, user.Email, "Plan It 邮箱验证", body)
}

// ────────────────────── Principal ──────────────────────

func (s *authService) ResolvePrincipal(ctx context.Context, accessToken string) (*model.Principal, error) {
	claims, err := s.creds.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPrincipalNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}

	return model.NewPrincipal(user), nil
}

// ────────────────────── Bootstrap ──────────────────────

func (s *authService) EnsureSuperAdmin(ctx context.Context, admin config.BootstrapAdmin) error {
	if admin.Email == "" {
		return nil
	}

	existing, err := s.repo.User.GetByEmail(ctx, admin.Email)
	switch {
	case err == nil:
		if existing.Role == model.RoleSuperAdmin {
			return nil
		}
		s.logger.Info("提升初始超级管理员", zap.String("user_id", existing.UserID))
		return s.repo.User.UpdateRole(ctx, existing.UserID, model.RoleSuperAdmin, existing.UserID)
	case !errors.Is(err, repository.ErrNotFound):
		return err
	}

	if len(admin.Password) < minPasswordLen {
		return fmt.Errorf("初始超级管理员密码长度不足 %d 位", minPasswordLen)
	}
	hash, err := s.creds.Hash(admin.Password)
	if err != nil {
		return err
	}

	name := admin.Name
	if name == "" {
		name = "Super Admin"
	}
	user := &model.User{
		Name:               name,
		Email:              admin.Email,
		PasswordHash:       hash,
		UserType:           model.UserTypeAdmin,
		Role:               model.RoleSuperAdmin,
		IsEmailVerified:    true,
		VerificationStatus: model.VerificationApproved,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		// 多实例同时启动时另一实例已创建
		if errors.Is(err, repository.ErrDuplicate) {
			return nil
		}
		return err
	}

	s.logger.Info("已创建初始超级管理员", zap.String("user_id", user.UserID))
	return nil
}

// ── 内部工具 ──

func (s *authService) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *authService) tokenResponse(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	pair, err := s.creds.IssueTokens(user.UserID, rememberMe)
	if err != nil {
		s.logger.Error("签发 Token 失败", zap.Error(err))
		return nil, err
	}
	return &dto.TokenResponse{
		User:         dto.NewUserResponse(user),
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
