package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtyMigration 上一次迁移中途失败，需要人工修复 schema_migrations
var ErrDirtyMigration = errors.New("数据库迁移处于 dirty 状态")

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("读取内嵌迁移脚本: %w", err)
	}
	target, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("连接迁移目标库: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, "postgres", target)
}

// RunMigrations 将 PostgreSQL 升级到内嵌脚本的最新版本
// dirty 状态直接拒绝启动，不做自动修复
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	if v, dirty, verr := m.Version(); verr == nil && dirty {
		return fmt.Errorf("%w: version=%d", ErrDirtyMigration, v)
	}

	upErr := m.Up()
	switch {
	case upErr == nil:
	case errors.Is(upErr, migrate.ErrNoChange):
		logger.Debug("schema 已是最新")
	default:
		return fmt.Errorf("升级 schema: %w", upErr)
	}

	v, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("读取 schema 版本: %w", err)
	}
	logger.Info("schema 就绪", zap.Uint("schema_version", v))
	return nil
}
