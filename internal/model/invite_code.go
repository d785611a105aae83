package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvitePurposeBusiness 商家注册邀请
const InvitePurposeBusiness = "business"

// InviteCode 邀请码表，对应 invite_codes
// 管理员为商家签发，一次性使用
type InviteCode struct {
	InviteCodeID string     `gorm:"type:varchar(36);primaryKey"            bson:"_id"               json:"invite_code_id"`
	Code         string     `gorm:"type:varchar(50);not null;uniqueIndex"  bson:"code"              json:"code"`
	Purpose      string     `gorm:"type:varchar(20);not null"              bson:"purpose"           json:"purpose"`
	ExpiresAt    time.Time  `gorm:"not null"                               bson:"expires_at"        json:"expires_at"`
	UsedAt       *time.Time `                                              bson:"used_at,omitempty" json:"used_at,omitempty"`
	UsedBy       *string    `gorm:"type:varchar(255)"                      bson:"used_by,omitempty" json:"used_by,omitempty"`
	BaseModel    `bson:",inline"`
}

// TableName 指定表名
func (InviteCode) TableName() string { return "invite_codes" }

// BeforeCreate 生成主键
func (i *InviteCode) BeforeCreate(_ *gorm.DB) error {
	if i.InviteCodeID == "" {
		i.InviteCodeID = uuid.New().String()
	}
	return nil
}

// Usable 未使用且未过期
func (i *InviteCode) Usable(now time.Time) bool {
	return i.UsedAt == nil && now.Before(i.ExpiresAt)
}
