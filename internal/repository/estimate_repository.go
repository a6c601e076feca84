package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/domain"
)

type EstimateRepository struct {
	db *gorm.DB
}

func NewEstimateRepository(db *gorm.DB) *EstimateRepository {
	return &EstimateRepository{db: db}
}

func (r *EstimateRepository) Create(ctx context.Context, estimate *domain.Estimate) error {
	return r.db.WithContext(ctx).Create(estimate).Error
}

func (r *EstimateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Estimate, error) {
	var estimate domain.Estimate
	err := r.db.WithContext(ctx).
		Preload("Parts", func(db *gorm.DB) *gorm.DB {
			return db.Order("part_number ASC")
		}).
		Preload("Files").
		Where("id = ?", id).
		First(&estimate).Error
	if err != nil {
		return nil, err
	}
	return &estimate, nil
}

func (r *EstimateRepository) Update(ctx context.Context, estimate *domain.Estimate) error {
	return r.db.WithContext(ctx).Save(estimate).Error
}

func (r *EstimateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Select("Parts").Delete(&domain.Estimate{BaseModel: domain.BaseModel{ID: id}}).Error
}

func (r *EstimateRepository) List(ctx context.Context, page, pageSize int, status *domain.EstimateStatus, customer string) ([]domain.Estimate, int64, error) {
	var estimates []domain.Estimate
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Estimate{})

	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if customer != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(customer)+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&estimates).Error

	return estimates, total, err
}

// CreatePart adds a part to an estimate.
func (r *EstimateRepository) CreatePart(ctx context.Context, part *domain.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

// GetPart loads a single part scoped to its estimate.
func (r *EstimateRepository) GetPart(ctx context.Context, estimateID, partID uuid.UUID) (*domain.Part, error) {
	var part domain.Part
	err := r.db.WithContext(ctx).
		Where("id = ? AND estimate_id = ?", partID, estimateID).
		First(&part).Error
	if err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *EstimateRepository) UpdatePart(ctx context.Context, part *domain.Part) error {
	return r.db.WithContext(ctx).Save(part).Error
}

func (r *EstimateRepository) DeletePart(ctx context.Context, estimateID, partID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND estimate_id = ?", partID, estimateID).
		Delete(&domain.Part{}).Error
}

// SaveWithParts persists the estimate header and all of its parts in one
// transaction so recomputed totals and part totals land together.
func (r *EstimateRepository) SaveWithParts(ctx context.Context, estimate *domain.Estimate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Parts", "Files").Save(estimate).Error; err != nil {
			return err
		}
		for i := range estimate.Parts {
			if err := tx.Save(&estimate.Parts[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *EstimateRepository) GetPartsCount(ctx context.Context, estimateID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Part{}).Where("estimate_id = ?", estimateID).Count(&count).Error
	return int(count), err
}
