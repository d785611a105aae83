//go:build integration

package repository_test

import (
	"database/sql"
	"os"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"plan-it/backend/pkg/database"
)

// PostgreSQL 集成测试：go test -tags integration ./internal/repository/...
// 表结构由版本化迁移创建，与生产一致

var pgTables = []string{"email_verifications", "invite_codes", "reviews", "vehicles", "places", "users"}

func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=plan_it password=plan_it_password dbname=plan_it_test sslmode=disable TimeZone=Asia/Kolkata"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Skipf("无法连接测试数据库: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取底层 sql.DB 失败: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		t.Skipf("测试数据库不可用: %v", err)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func truncateAll(t *testing.T, sqlDB *sql.DB) {
	t.Helper()
	for _, table := range pgTables {
		if _, err := sqlDB.Exec("TRUNCATE TABLE " + table + " CASCADE"); err != nil {
			t.Fatalf("清空 %s 失败: %v", table, err)
		}
	}
}

func TestRepositories_Postgres(t *testing.T) {
	db := openPostgres(t)
	sqlDB, _ := db.DB()

	for _, tc := range repoCases {
		t.Run(tc.name, func(t *testing.T) {
			truncateAll(t, sqlDB)
			tc.fn(t, db)
		})
	}
}
