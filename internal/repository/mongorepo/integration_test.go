//go:build integration

package mongorepo_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"plan-it/backend/config"
	"plan-it/backend/internal/model"
	"plan-it/backend/internal/repository"
	"plan-it/backend/internal/repository/mongorepo"
	"plan-it/backend/pkg/mongodb"
	pkgerrors "plan-it/backend/pkg/errors"
)

// MongoDB 集成测试：go test -tags integration ./internal/repository/mongorepo/...
// 每次运行使用独立数据库，结束后删除

func setupMongo(t *testing.T) (*repository.Repository, func(collection string, docs ...interface{})) {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx := context.Background()
	client, db, err := mongodb.Connect(ctx, &config.MongoConfig{
		URI:      uri,
		Database: fmt.Sprintf("plan_it_test_%d", time.Now().UnixNano()),
		Timeout:  5 * time.Second,
	}, zap.NewNop())
	if err != nil {
		t.Skipf("MongoDB 不可用: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	require.NoError(t, mongorepo.EnsureIndexes(ctx, db))

	insert := func(collection string, docs ...interface{}) {
		_, err := db.Collection(collection).InsertMany(ctx, docs)
		require.NoError(t, err)
	}
	return mongorepo.NewRepository(db), insert
}

func TestMongoUserRepo(t *testing.T) {
	repo, _ := setupMongo(t)
	ctx := context.Background()

	u := &model.User{
		Name: "Jane", Email: "Jane@vitapstudent.ac.in", PasswordHash: "hash",
		UserType: model.UserTypeStudent, VerificationStatus: model.VerificationPending,
	}
	require.NoError(t, repo.User.Create(ctx, u))
	assert.NotEmpty(t, u.UserID)

	dup := &model.User{Name: "Jane", Email: "jane@vitapstudent.ac.in", PasswordHash: "hash", UserType: model.UserTypeStudent}
	assert.ErrorIs(t, repo.User.Create(ctx, dup), repository.ErrDuplicate)

	got, err := repo.User.GetByEmail(ctx, "JANE@vitapstudent.ac.in")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, got.UserID)

	upd := repository.VerificationUpdate{Status: model.VerificationApproved, VerifiedBy: "admin-1", VerifiedAt: time.Now()}
	require.NoError(t, repo.User.UpdateVerification(ctx, u.UserID, got.Version, upd))
	assert.ErrorIs(t, repo.User.UpdateVerification(ctx, u.UserID, got.Version, upd), pkgerrors.ErrOptimisticLock)

	users, total, err := repo.User.ListWithFilters(ctx, &repository.UserListFilters{
		UserType: model.UserTypeStudent,
		Status:   model.VerificationApproved,
	}, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, model.VerificationApproved, users[0].VerificationStatus)

	_, err = repo.User.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMongoInviteCodeRepo(t *testing.T) {
	repo, _ := setupMongo(t)
	ctx := context.Background()
	now := time.Now()

	code := &model.InviteCode{Code: "ABCDEF123456", Purpose: model.InvitePurposeBusiness, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.InviteCode.Create(ctx, code))

	_, err := repo.InviteCode.Claim(ctx, "ABCDEF123456", "owner@cafe.in", now)
	require.NoError(t, err)
	_, err = repo.InviteCode.Claim(ctx, "ABCDEF123456", "other@cafe.in", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.InviteCode.Release(ctx, code.InviteCodeID))
	_, err = repo.InviteCode.Claim(ctx, "ABCDEF123456", "other@cafe.in", now)
	assert.NoError(t, err)
}

func TestMongoStatsRepo(t *testing.T) {
	repo, insert := setupMongo(t)
	ctx := context.Background()

	insert("places",
		bson.M{"_id": "p1", "name": "Beach", "added_by": "biz-1"},
		bson.M{"_id": "p2", "name": "Fort", "added_by": "biz-1"},
	)
	insert("vehicles", bson.M{"_id": "v1", "name": "Scooter", "owner": "biz-2"})

	places, err := repo.Stats.CountPlacesByOwners(ctx, []string{"biz-1", "biz-2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"biz-1": 2}, places)

	n, err := repo.Stats.CountVehicles(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
