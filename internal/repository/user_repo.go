package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"plan-it/backend/internal/model"
	pkgerrors "plan-it/backend/pkg/errors"
)

// UserListFilters 用户列表筛选条件
type UserListFilters struct {
	UserType model.UserType
	Status   model.VerificationStatus
	Keyword  string
}

// VerificationUpdate 审核结果写入
type VerificationUpdate struct {
	Status     model.VerificationStatus
	Reason     string
	VerifiedBy string
	VerifiedAt time.Time
}

// UserTypeStatusCount 按类型与审核状态分组的计数
type UserTypeStatusCount struct {
	UserType model.UserType
	Status   model.VerificationStatus
	Count    int64
}

// UserRepository 用户数据访问接口
// 审核状态、角色、密码各自独立更新，避免整行覆盖并发修改
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateVerification 按版本号条件更新审核状态，版本不符返回 ErrOptimisticLock
	UpdateVerification(ctx context.Context, id string, expectedVersion int, upd VerificationUpdate) error
	UpdateRole(ctx context.Context, id string, role model.Role, updatedBy string) error
	UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error
	MarkEmailVerified(ctx context.Context, id string) error
	ListWithFilters(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error)
	CountByTypeAndStatus(ctx context.Context) ([]UserTypeStatusCount, error)
	CountAdmins(ctx context.Context) (int64, error)
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

// Create 依赖 email 唯一索引拦截重复注册，冲突时返回 ErrDuplicate
func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(user.Email)
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) UpdateVerification(ctx context.Context, id string, expectedVersion int, upd VerificationUpdate) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"verification_status": upd.Status,
			"verification_reason": upd.Reason,
			"verified_by":         upd.VerifiedBy,
			"verified_at":         upd.VerifiedAt,
			"updated_by":          upd.VerifiedBy,
			"updated_at":          upd.VerifiedAt,
			"version":             gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id string, role model.Role, updatedBy string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_by": updatedBy,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":        passwordHash,
			"must_change_password": mustChange,
			"updated_at":           time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) MarkEmailVerified(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"is_email_verified": true,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 关键字按字面匹配，% 与 _ 不作通配符
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *userRepo) ListWithFilters(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if filters != nil {
		if filters.UserType != "" {
			db = db.Where("user_type = ?", filters.UserType)
		}
		if filters.Status != "" {
			db = db.Where("verification_status = ?", filters.Status)
		}
		if filters.Keyword != "" {
			kw := "%" + escapeLike(strings.ToLower(filters.Keyword)) + "%"
			db = db.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR email LIKE ? ESCAPE '\' OR LOWER(vitap_id) LIKE ? ESCAPE '\')`, kw, kw, kw)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepo) CountByTypeAndStatus(ctx context.Context) ([]UserTypeStatusCount, error) {
	var rows []struct {
		UserType           model.UserType
		VerificationStatus model.VerificationStatus
		Count              int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Select("user_type, verification_status, COUNT(*) AS count").
		Group("user_type, verification_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]UserTypeStatusCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, UserTypeStatusCount{
			UserType: row.UserType,
			Status:   row.VerificationStatus,
			Count:    row.Count,
		})
	}
	return result, nil
}

func (r *userRepo) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("role IN ? OR user_type = ?", []model.Role{model.RoleAdmin, model.RoleSuperAdmin}, model.UserTypeAdmin).
		Count(&count).Error
	return count, err
}
