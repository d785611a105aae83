package mongorepo

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plan-it/backend/internal/model"
	"plan-it/backend/internal/repository"
	pkgerrors "plan-it/backend/pkg/errors"
)

type userRepo struct {
	col *mongo.Collection
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(user.Email)
	user.EnsureDefaults(time.Now())
	_, err := r.col.InsertOne(ctx, user)
	return translate(err)
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var user model.User
	if err := r.col.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *userRepo) UpdateVerification(ctx context.Context, id string, expectedVersion int, upd repository.VerificationUpdate) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "version": expectedVersion},
		bson.M{
			"$set": bson.M{
				"verification_status": upd.Status,
				"verification_reason": upd.Reason,
				"verified_by":         upd.VerifiedBy,
				"verified_at":         upd.VerifiedAt,
				"updated_by":          upd.VerifiedBy,
				"updated_at":          upd.VerifiedAt,
			},
			"$inc": bson.M{"version": 1},
		})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *userRepo) updateFields(ctx context.Context, id string, update bson.M) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id string, role model.Role, updatedBy string) error {
	return r.updateFields(ctx, id, bson.M{
		"$set": bson.M{"role": role, "updated_by": updatedBy, "updated_at": time.Now()},
		"$inc": bson.M{"version": 1},
	})
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error {
	return r.updateFields(ctx, id, bson.M{
		"$set": bson.M{"password_hash": passwordHash, "must_change_password": mustChange, "updated_at": time.Now()},
	})
}

func (r *userRepo) MarkEmailVerified(ctx context.Context, id string) error {
	return r.updateFields(ctx, id, bson.M{
		"$set": bson.M{"is_email_verified": true, "updated_at": time.Now()},
	})
}

func (r *userRepo) ListWithFilters(ctx context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	filter := bson.M{}
	if filters != nil {
		if filters.UserType != "" {
			filter["user_type"] = filters.UserType
		}
		if filters.Status != "" {
			filter["verification_status"] = filters.Status
		}
		if filters.Keyword != "" {
			pattern := bson.M{"$regex": regexp.QuoteMeta(filters.Keyword), "$options": "i"}
			filter["$or"] = bson.A{
				bson.M{"name": pattern},
				bson.M{"email": pattern},
				bson.M{"vitap_id": pattern},
			}
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, translate(err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, translate(err)
	}
	defer cur.Close(ctx)

	users := make([]model.User, 0, limit)
	if err := cur.All(ctx, &users); err != nil {
		return nil, 0, translate(err)
	}
	return users, total, nil
}

func (r *userRepo) CountByTypeAndStatus(ctx context.Context) ([]repository.UserTypeStatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "user_type", Value: "$user_type"},
				{Key: "status", Value: "$verification_status"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, translate(err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID struct {
			UserType model.UserType           `bson:"user_type"`
			Status   model.VerificationStatus `bson:"status"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, translate(err)
	}

	result := make([]repository.UserTypeStatusCount, 0, len(rows))
	for _, row := range rows {
		result = append(result, repository.UserTypeStatusCount{
			UserType: row.ID.UserType,
			Status:   row.ID.Status,
			Count:    row.Count,
		})
	}
	return result, nil
}

func (r *userRepo) CountAdmins(ctx context.Context) (int64, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"role": bson.M{"$in": bson.A{model.RoleAdmin, model.RoleSuperAdmin}}},
		bson.M{"user_type": model.UserTypeAdmin},
	}})
	return n, translate(err)
}
