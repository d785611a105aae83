package mongorepo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plan-it/backend/internal/model"
	"plan-it/backend/internal/repository"
)

// ── 邮箱验证令牌 ──

type emailVerificationRepo struct {
	col *mongo.Collection
}

func (r *emailVerificationRepo) Create(ctx context.Context, v *model.EmailVerification) error {
	_, err := r.col.InsertOne(ctx, v)
	return translate(err)
}

func (r *emailVerificationRepo) GetByToken(ctx context.Context, token string) (*model.EmailVerification, error) {
	var v model.EmailVerification
	if err := r.col.FindOne(ctx, bson.M{"_id": token}).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *emailVerificationRepo) MarkConsumed(ctx context.Context, token string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": token, "consumed": false},
		bson.M{"$set": bson.M{"consumed": true}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *emailVerificationRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"user_id": userID, "consumed": false})
	return translate(err)
}

// ── 邀请码 ──

type inviteCodeRepo struct {
	col *mongo.Collection
}

func (r *inviteCodeRepo) Create(ctx context.Context, code *model.InviteCode) error {
	if code.InviteCodeID == "" {
		code.InviteCodeID = uuid.New().String()
	}
	now := time.Now()
	if code.CreatedAt.IsZero() {
		code.CreatedAt = now
	}
	code.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, code)
	return translate(err)
}

func (r *inviteCodeRepo) GetByCode(ctx context.Context, code string) (*model.InviteCode, error) {
	var invite model.InviteCode
	if err := r.col.FindOne(ctx, bson.M{"code": code}).Decode(&invite); err != nil {
		return nil, translate(err)
	}
	return &invite, nil
}

func (r *inviteCodeRepo) Claim(ctx context.Context, code, usedBy string, now time.Time) (*model.InviteCode, error) {
	var invite model.InviteCode
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{
			"code":       code,
			"used_at":    bson.M{"$exists": false},
			"expires_at": bson.M{"$gt": now},
		},
		bson.M{"$set": bson.M{"used_at": now, "used_by": usedBy, "updated_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&invite)
	if err != nil {
		return nil, translate(err)
	}
	return &invite, nil
}

func (r *inviteCodeRepo) Release(ctx context.Context, inviteCodeID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": inviteCodeID},
		bson.M{
			"$unset": bson.M{"used_at": "", "used_by": ""},
			"$set":   bson.M{"updated_at": time.Now()},
		})
	return translate(err)
}

// ── 统计 ──

type statsRepo struct {
	places   *mongo.Collection
	vehicles *mongo.Collection
	reviews  *mongo.Collection
}

func (r *statsRepo) CountPlaces(ctx context.Context) (int64, error) {
	n, err := r.places.CountDocuments(ctx, bson.M{})
	return n, translate(err)
}

func (r *statsRepo) CountVehicles(ctx context.Context) (int64, error) {
	n, err := r.vehicles.CountDocuments(ctx, bson.M{})
	return n, translate(err)
}

func (r *statsRepo) CountReviews(ctx context.Context) (int64, error) {
	n, err := r.reviews.CountDocuments(ctx, bson.M{})
	return n, translate(err)
}

func (r *statsRepo) CountPlacesByOwners(ctx context.Context, ownerIDs []string) (map[string]int64, error) {
	return countByOwner(ctx, r.places, "added_by", ownerIDs)
}

func (r *statsRepo) CountVehiclesByOwners(ctx context.Context, ownerIDs []string) (map[string]int64, error) {
	return countByOwner(ctx, r.vehicles, "owner", ownerIDs)
}

func countByOwner(ctx context.Context, col *mongo.Collection, field string, ownerIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: field, Value: bson.D{{Key: "$in", Value: ownerIDs}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		OwnerID string `bson:"_id"`
		Count   int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, translate(err)
	}
	for _, row := range rows {
		result[row.OwnerID] = row.Count
	}
	return result, nil
}
