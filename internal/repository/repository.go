package repository

import (
	"gorm.io/gorm"
)

// 与存储实现无关的哨兵错误；Mongo 实现返回同样的值
var (
	ErrNotFound  = gorm.ErrRecordNotFound
	ErrDuplicate = gorm.ErrDuplicatedKey
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User              UserRepository
	EmailVerification EmailVerificationRepository
	InviteCode        InviteCodeRepository
	Stats             StatsRepository
}

// NewRepository 创建基于 GORM 的 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:              NewUserRepo(db),
		EmailVerification: NewEmailVerificationRepo(db),
		InviteCode:        NewInviteCodeRepo(db),
		Stats:             NewStatsRepo(db),
	}
}
