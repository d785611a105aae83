package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"plan-it/backend/internal/model"
)

// InviteCodeRepository 邀请码数据访问接口
type InviteCodeRepository interface {
	Create(ctx context.Context, code *model.InviteCode) error
	GetByCode(ctx context.Context, code string) (*model.InviteCode, error)
	// Claim 以条件更新（used_at IS NULL 且未过期）原子占用邀请码，
	// 无可用记录时返回 ErrNotFound。同一邀请码并发注册只有一个成功。
	Claim(ctx context.Context, code, usedBy string, now time.Time) (*model.InviteCode, error)
	// Release 注册失败时归还已占用的邀请码
	Release(ctx context.Context, inviteCodeID string) error
}

type inviteCodeRepo struct {
	db *gorm.DB
}

// NewInviteCodeRepo 创建 InviteCodeRepository 实例
func NewInviteCodeRepo(db *gorm.DB) InviteCodeRepository {
	return &inviteCodeRepo{db: db}
}

func (r *inviteCodeRepo) Create(ctx context.Context, code *model.InviteCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *inviteCodeRepo) GetByCode(ctx context.Context, code string) (*model.InviteCode, error) {
	var invite model.InviteCode
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&invite).Error
	if err != nil {
		return nil, err
	}
	return &invite, nil
}

func (r *inviteCodeRepo) Claim(ctx context.Context, code, usedBy string, now time.Time) (*model.InviteCode, error) {
	res := r.db.WithContext(ctx).
		Model(&model.InviteCode{}).
		Where("code = ? AND used_at IS NULL AND expires_at > ?", code, now).
		Updates(map[string]interface{}{
			"used_at":    now,
			"used_by":    usedBy,
			"updated_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByCode(ctx, code)
}

func (r *inviteCodeRepo) Release(ctx context.Context, inviteCodeID string) error {
	return r.db.WithContext(ctx).
		Model(&model.InviteCode{}).
		Where("invite_code_id = ?", inviteCodeID).
		Updates(map[string]interface{}{
			"used_at":    nil,
			"used_by":    nil,
			"updated_at": time.Now(),
		}).Error
}
