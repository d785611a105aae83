package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" bson:"created_at"           json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(36)"                   bson:"created_by,omitempty" json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" bson:"updated_at"           json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(36)"                   bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	BaseModel `bson:",inline"`
	Version   int `gorm:"not null;default:1" bson:"version" json:"version"`
}
