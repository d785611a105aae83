package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"plan-it/backend/internal/dto"
	"plan-it/backend/internal/model"
	"plan-it/backend/internal/repository"
	pkgerrors "plan-it/backend/pkg/errors"
	"plan-it/backend/pkg/metrics"
	"plan-it/backend/pkg/mq"
)

// VerificationService 学生/商家审核业务接口
type VerificationService interface {
	VerifyStudent(ctx context.Context, id string, req *dto.VerifyRequest, caller *model.Principal) error
	VerifyBusiness(ctx context.Context, id string, req *dto.VerifyRequest, caller *model.Principal) error
}

type verificationService struct {
	repo      *repository.Repository
	publisher mq.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewVerificationService 创建 VerificationService 实例
func NewVerificationService(
	repo *repository.Repository,
	publisher mq.Publisher,
	mt *metrics.Metrics,
	logger *zap.Logger,
) VerificationService {
	return &verificationService{
		repo:      repo,
		publisher: publisher,
		metrics:   mt,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *verificationService) VerifyStudent(ctx context.Context, id string, req *dto.VerifyRequest, caller *model.Principal) error {
	return s.verify(ctx, model.UserTypeStudent, id, req, caller)
}

func (s *verificationService) VerifyBusiness(ctx context.Context, id string, req *dto.VerifyRequest, caller *model.Principal) error {
	return s.verify(ctx, model.UserTypeBusiness, id, req, caller)
}

// ═══════════════════════════════════════════════════════════
// verify 审核状态迁移
// ═══════════════════════════════════════════════════════════
//
//   - 仅 approved / rejected 可写入
//   - 状态与理由均未变化时直接返回（幂等）
//   - 已有决定被改写时记录日志
//   - 写入以 version 为条件，并发修改返回 ErrOptimisticLock
func (s *verificationService) verify(
	ctx context.Context,
	category model.UserType,
	id string,
	req *dto.VerifyRequest,
	caller *model.Principal,
) error {
	if caller == nil || !caller.Role.IsAdmin() {
		return ErrAdminRequired
	}

	status := model.VerificationStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.IsDecision() {
		return ErrInvalidStatus
	}

	reason := strings.TrimSpace(req.Reason)
	if status == model.VerificationApproved {
		reason = ""
	}

	notFound := ErrStudentNotFound
	if category == model.UserTypeBusiness {
		notFound = ErrBusinessNotFound
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if user.UserType != category {
		return notFound
	}

	previous := user.VerificationStatus
	if previous == status && user.VerificationReason == reason {
		s.logger.Debug("审核结果未变化", zap.String("id", id), zap.String("status", string(status)))
		return nil
	}
	if previous.IsDecision() {
		s.logger.Info("管理员改写审核结果",
			zap.String("id", id),
			zap.String("from", string(previous)),
			zap.String("to", string(status)),
			zap.String("admin_id", caller.UserID),
		)
	}

	now := s.now()
	err = s.repo.User.UpdateVerification(ctx, id, user.Version, repository.VerificationUpdate{
		Status:     status,
		Reason:     reason,
		VerifiedBy: caller.UserID,
		VerifiedAt: now,
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return err
		}
		s.logger.Error("更新审核状态失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.metrics.ObserveVerification(string(category), string(status))
	s.publishDecision(ctx, user, previous, status, reason, caller.UserID, now)
	return nil
}

// publishDecision 通知失败只记录日志，不影响审核结果
func (s *verificationService) publishDecision(
	ctx context.Context,
	user *model.User,
	previous, status model.VerificationStatus,
	reason, adminID string,
	at time.Time,
) {
	event := mq.VerificationDecidedEvent{
		UserID:         user.UserID,
		Email:          user.Email,
		UserType:       string(user.UserType),
		Status:         string(status),
		PreviousStatus: string(previous),
		Reason:         reason,
		DecidedBy:      adminID,
		DecidedAt:      at.UTC(),
	}
	if err := s.publisher.Publish(ctx, mq.RoutingKeyVerificationDecided, event); err != nil {
		s.logger.Warn("发布审核事件失败", zap.String("user_id", user.UserID), zap.Error(err))
	}
}
