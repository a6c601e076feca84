package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/domain"
)

type WorkOrderRepository struct {
	db *gorm.DB
}

func NewWorkOrderRepository(db *gorm.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Parts", func(db *gorm.DB) *gorm.DB {
			return db.Order("part_number ASC")
		}).
		Preload("Files").
		Where("id = ?", id).
		First(&wo).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *WorkOrderRepository) GetByDRNumber(ctx context.Context, drNumber int) (*domain.WorkOrder, error) {
	var wo domain.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Parts").
		Where("dr_number = ?", drNumber).
		First(&wo).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *WorkOrderRepository) Update(ctx context.Context, wo *domain.WorkOrder) error {
	return r.db.WithContext(ctx).Omit("Parts", "Files", "Estimate").Save(wo).Error
}

func (r *WorkOrderRepository) List(ctx context.Context, page, pageSize int, status *domain.WorkOrderStatus) ([]domain.WorkOrder, int64, error) {
	var orders []domain.WorkOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.WorkOrder{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&orders).Error

	return orders, total, err
}

// MaxDRNumber returns the highest DR number carried by any work order, 0 when
// none exists.
func (r *WorkOrderRepository) MaxDRNumber(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&domain.WorkOrder{}).
		Select("COALESCE(MAX(dr_number), 0)").
		Scan(&max).Error
	return max, err
}
