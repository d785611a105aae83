package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"plan-it/backend/internal/model"
	"plan-it/backend/internal/repository"
	pkgerrors "plan-it/backend/pkg/errors"
)

// PostgreSQL 方言下的 SQL 形态与驱动错误透传

func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestUserRepo_UpdateVerification_ConditionalOnVersion(t *testing.T) {
	db, mock := newMockPostgres(t)
	repo := repository.NewUserRepo(db)

	mock.ExpectExec(`UPDATE "users" SET .*"version"=version \+ 1.* WHERE user_id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateVerification(context.Background(), "u-1", 3, repository.VerificationUpdate{
		Status:     model.VerificationApproved,
		VerifiedBy: "admin-1",
		VerifiedAt: time.Now(),
	})
	assert.ErrorIs(t, err, pkgerrors.ErrOptimisticLock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_DriverErrorPassthrough(t *testing.T) {
	db, mock := newMockPostgres(t)
	repo := repository.NewUserRepo(db)
	connErr := errors.New("connection reset by peer")

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).WillReturnError(connErr)

	err := repo.UpdateRole(context.Background(), "u-1", model.RoleAdmin, "root")
	assert.ErrorIs(t, err, connErr)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepo_CountByOwner_SingleGroupedQuery(t *testing.T) {
	db, mock := newMockPostgres(t)
	repo := repository.NewStatsRepo(db)

	rows := sqlmock.NewRows([]string{"owner_id", "count"}).
		AddRow("biz-1", 4).
		AddRow("biz-2", 1)
	mock.ExpectQuery(`SELECT added_by AS owner_id, COUNT\(\*\) AS count FROM "places" WHERE added_by IN \(\$1,\$2,\$3\) GROUP BY "?added_by"?`).
		WithArgs("biz-1", "biz-2", "biz-3").
		WillReturnRows(rows)

	got, err := repo.CountPlacesByOwners(context.Background(), []string{"biz-1", "biz-2", "biz-3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"biz-1": 4, "biz-2": 1}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
