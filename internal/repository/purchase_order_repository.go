package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/domain"
)

type PurchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db}
}

func (r *PurchaseOrderRepository) Create(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

// CreateTx creates the purchase order inside a caller-owned transaction so
// it commits together with its number allocation.
func (r *PurchaseOrderRepository) CreateTx(ctx context.Context, tx *gorm.DB, po *domain.PurchaseOrder) error {
	return tx.Create(po).Error
}

func (r *PurchaseOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&po).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *PurchaseOrderRepository) GetByNumber(ctx context.Context, poNumber int) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.db.WithContext(ctx).Where("po_number = ?", poNumber).First(&po).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *PurchaseOrderRepository) Update(ctx context.Context, po *domain.PurchaseOrder) error {
	return r.db.WithContext(ctx).Save(po).Error
}

// UpdateTx saves the purchase order inside a caller-owned transaction so it
// commits together with its number's void or release.
func (r *PurchaseOrderRepository) UpdateTx(ctx context.Context, tx *gorm.DB, po *domain.PurchaseOrder) error {
	return tx.Save(po).Error
}

func (r *PurchaseOrderRepository) List(ctx context.Context, page, pageSize int, status *domain.PurchaseOrderStatus, workOrderID *uuid.UUID) ([]domain.PurchaseOrder, int64, error) {
	var orders []domain.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if workOrderID != nil {
		query = query.Where("work_order_id = ?", *workOrderID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&orders).Error

	return orders, total, err
}

// MaxPONumber returns the highest PO number carried by any purchase order, 0
// when none exists.
func (r *PurchaseOrderRepository) MaxPONumber(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).
		Select("COALESCE(MAX(po_number), 0)").
		Scan(&max).Error
	return max, err
}
