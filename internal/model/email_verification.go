package model

import "time"

// EmailVerification 邮箱验证令牌表，对应 email_verifications
type EmailVerification struct {
	Token     string    `gorm:"type:varchar(64);primaryKey" bson:"_id"        json:"-"`
	UserID    string    `gorm:"type:varchar(36);not null;index" bson:"user_id" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"                    bson:"expires_at" json:"expires_at"`
	Consumed  bool      `gorm:"not null;default:false"      bson:"consumed"   json:"consumed"`
	CreatedAt time.Time `gorm:"not null"                    bson:"created_at" json:"created_at"`
}

// TableName 指定表名
func (EmailVerification) TableName() string { return "email_verifications" }

// Usable 未使用且未过期
func (v *EmailVerification) Usable(now time.Time) bool {
	return !v.Consumed && now.Before(v.ExpiresAt)
}
