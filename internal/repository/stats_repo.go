package repository

import (
	"context"

	"gorm.io/gorm"

	"plan-it/backend/internal/model"
)

// StatsRepository 地点/车辆/评价统计（只读）
type StatsRepository interface {
	CountPlaces(ctx context.Context) (int64, error)
	CountVehicles(ctx context.Context) (int64, error)
	CountReviews(ctx context.Context) (int64, error)
	// CountPlacesByOwners 返回 ownerID -> 地点数，无记录的 owner 不出现在结果中
	CountPlacesByOwners(ctx context.Context, ownerIDs []string) (map[string]int64, error)
	CountVehiclesByOwners(ctx context.Context, ownerIDs []string) (map[string]int64, error)
}

type statsRepo struct {
	db *gorm.DB
}

// NewStatsRepo 创建 StatsRepository 实例
func NewStatsRepo(db *gorm.DB) StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) count(ctx context.Context, m interface{}) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(m).Count(&n).Error
	return n, err
}

func (r *statsRepo) CountPlaces(ctx context.Context) (int64, error) {
	return r.count(ctx, &model.Place{})
}

func (r *statsRepo) CountVehicles(ctx context.Context) (int64, error) {
	return r.count(ctx, &model.Vehicle{})
}

func (r *statsRepo) CountReviews(ctx context.Context) (int64, error) {
	return r.count(ctx, &model.Review{})
}

func (r *statsRepo) CountPlacesByOwners(ctx context.Context, ownerIDs []string) (map[string]int64, error) {
	return r.countByOwner(ctx, &model.Place{}, "added_by", ownerIDs)
}

func (r *statsRepo) CountVehiclesByOwners(ctx context.Context, ownerIDs []string) (map[string]int64, error) {
	return r.countByOwner(ctx, &model.Vehicle{}, "owner", ownerIDs)
}

func (r *statsRepo) countByOwner(ctx context.Context, m interface{}, column string, ownerIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		OwnerID string
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(m).
		Select(column+" AS owner_id, COUNT(*) AS count").
		Where(column+" IN ?", ownerIDs).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.OwnerID] = row.Count
	}
	return result, nil
}
