package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserType 用户类型
type UserType string

const (
	UserTypeStudent  UserType = "student"
	UserTypePublic   UserType = "public"
	UserTypeBusiness UserType = "business"
	UserTypeAdmin    UserType = "admin"
)

// Valid 是否为已知类型
func (t UserType) Valid() bool {
	switch t {
	case UserTypeStudent, UserTypePublic, UserTypeBusiness, UserTypeAdmin:
		return true
	}
	return false
}

// RequiresVerification 学生与商家需要管理员审核
func (t UserType) RequiresVerification() bool {
	return t == UserTypeStudent || t == UserTypeBusiness
}

// VerificationStatus 审核状态
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// Valid 是否为已知状态
func (s VerificationStatus) Valid() bool {
	return s == VerificationPending || s == VerificationApproved || s == VerificationRejected
}

// IsDecision 是否为管理员可设置的终态
func (s VerificationStatus) IsDecision() bool {
	return s == VerificationApproved || s == VerificationRejected
}

// User 用户表，对应 users
type User struct {
	UserID             string             `gorm:"type:varchar(36);primaryKey"                 bson:"_id"                           json:"user_id"`
	Name               string             `gorm:"type:varchar(100);not null"                  bson:"name"                          json:"name"`
	Email              string             `gorm:"type:varchar(255);not null;uniqueIndex"      bson:"email"                         json:"email"`
	PasswordHash       string             `gorm:"type:varchar(255);not null"                  bson:"password_hash"                 json:"-"`
	Phone              string             `gorm:"type:varchar(20)"                            bson:"phone,omitempty"               json:"phone,omitempty"`
	UserType           UserType           `gorm:"type:varchar(20);not null;index"             bson:"user_type"                     json:"user_type"`
	Role               Role               `gorm:"type:varchar(20);not null;default:'user'"    bson:"role"                          json:"role"`
	IsEmailVerified    bool               `gorm:"not null;default:false"                      bson:"is_email_verified"             json:"is_email_verified"`
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;index"             bson:"verification_status"           json:"verification_status"`
	VerificationReason string             `gorm:"type:varchar(500)"                           bson:"verification_reason,omitempty" json:"verification_reason,omitempty"`
	VerifiedBy         *string            `gorm:"type:varchar(36)"                            bson:"verified_by,omitempty"         json:"verified_by,omitempty"`
	VerifiedAt         *time.Time         `                                                   bson:"verified_at,omitempty"         json:"verified_at,omitempty"`
	VitapID            string             `gorm:"type:varchar(20)"                            bson:"vitap_id,omitempty"            json:"vitap_id,omitempty"`
	Year               string             `gorm:"type:varchar(10)"                            bson:"year,omitempty"                json:"year,omitempty"`
	Branch             string             `gorm:"type:varchar(50)"                            bson:"branch,omitempty"              json:"branch,omitempty"`
	MustChangePassword bool               `gorm:"not null;default:false"                      bson:"must_change_password"          json:"must_change_password"`
	VersionedModel     `bson:",inline"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 生成主键并补齐默认值
func (u *User) BeforeCreate(_ *gorm.DB) error {
	u.EnsureDefaults(time.Now())
	return nil
}

// EnsureDefaults 补齐主键、角色、时间戳与版本号（GORM 与 Mongo 两种存储共用）
func (u *User) EnsureDefaults(now time.Time) {
	if u.UserID == "" {
		u.UserID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	if u.Version == 0 {
		u.Version = 1
	}
}
