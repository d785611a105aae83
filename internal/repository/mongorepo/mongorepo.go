// Package mongorepo 基于 MongoDB 的 Repository 实现（db.driver=mongo）。
// 与 GORM 实现返回相同的哨兵错误，Service 层无需区分存储类型。
package mongorepo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plan-it/backend/internal/repository"
)

// 集合名称
const (
	colUsers              = "users"
	colEmailVerifications = "email_verifications"
	colInviteCodes        = "invite_codes"
	colPlaces             = "places"
	colVehicles           = "vehicles"
	colReviews            = "reviews"
)

// NewRepository 创建基于 MongoDB 的 Repository 聚合
func NewRepository(db *mongo.Database) *repository.Repository {
	return &repository.Repository{
		User:              &userRepo{col: db.Collection(colUsers)},
		EmailVerification: &emailVerificationRepo{col: db.Collection(colEmailVerifications)},
		InviteCode:        &inviteCodeRepo{col: db.Collection(colInviteCodes)},
		Stats: &statsRepo{
			places:   db.Collection(colPlaces),
			vehicles: db.Collection(colVehicles),
			reviews:  db.Collection(colReviews),
		},
	}
}

// EnsureIndexes 创建唯一索引与查询索引；email 唯一索引是防止重复注册的唯一手段
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("ux_users_email")},
			{Keys: bson.D{{Key: "user_type", Value: 1}, {Key: "verification_status", Value: 1}}},
		},
		colEmailVerifications: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		colInviteCodes: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true).SetName("ux_invite_codes_code")},
		},
		colPlaces:   {{Keys: bson.D{{Key: "added_by", Value: 1}}}},
		colVehicles: {{Keys: bson.D{{Key: "owner", Value: 1}}}},
	}
	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("创建 %s 索引失败: %w", name, err)
		}
	}
	return nil
}

// translate 将驱动错误转换为仓储层哨兵错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	default:
		return err
	}
}
