package repository

import (
	"context"

	"gorm.io/gorm"

	"plan-it/backend/internal/model"
)

// EmailVerificationRepository 邮箱验证令牌数据访问接口
type EmailVerificationRepository interface {
	Create(ctx context.Context, v *model.EmailVerification) error
	GetByToken(ctx context.Context, token string) (*model.EmailVerification, error)
	// MarkConsumed 仅当令牌未使用时标记，已使用返回 ErrNotFound
	MarkConsumed(ctx context.Context, token string) error
	// DeleteByUser 作废该用户所有未使用的令牌（重发验证邮件前调用）
	DeleteByUser(ctx context.Context, userID string) error
}

type emailVerificationRepo struct {
	db *gorm.DB
}

// NewEmailVerificationRepo 创建 EmailVerificationRepository 实例
func NewEmailVerificationRepo(db *gorm.DB) EmailVerificationRepository {
	return &emailVerificationRepo{db: db}
}

func (r *emailVerificationRepo) Create(ctx context.Context, v *model.EmailVerification) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *emailVerificationRepo) GetByToken(ctx context.Context, token string) (*model.EmailVerification, error) {
	var v model.EmailVerification
	err := r.db.WithContext(ctx).
		Where("token = ?", token).
		First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *emailVerificationRepo) MarkConsumed(ctx context.Context, token string) error {
	res := r.db.WithContext(ctx).
		Model(&model.EmailVerification{}).
		Where("token = ? AND consumed = ?", token, false).
		Update("consumed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *emailVerificationRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND consumed = ?", userID, false).
		Delete(&model.EmailVerification{}).Error
}
