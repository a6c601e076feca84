package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/domain"
)

type LaborRuleRepository struct {
	db *gorm.DB
}

func NewLaborRuleRepository(db *gorm.DB) *LaborRuleRepository {
	return &LaborRuleRepository{db: db}
}

func (r *LaborRuleRepository) Create(ctx context.Context, rule *domain.LaborMinimumRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *LaborRuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LaborMinimumRule, error) {
	var rule domain.LaborMinimumRule
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (r *LaborRuleRepository) Update(ctx context.Context, rule *domain.LaborMinimumRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *LaborRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.LaborMinimumRule{}, "id = ?", id).Error
}

// ListActive returns the active rules the totals computation evaluates
// against.
func (r *LaborRuleRepository) ListActive(ctx context.Context) ([]domain.LaborMinimumRule, error) {
	var rules []domain.LaborMinimumRule
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("part_type ASC, minimum DESC").
		Find(&rules).Error
	return rules, err
}

// ListAll returns every rule including inactive ones, for administration.
func (r *LaborRuleRepository) ListAll(ctx context.Context) ([]domain.LaborMinimumRule, error) {
	var rules []domain.LaborMinimumRule
	err := r.db.WithContext(ctx).
		Order("part_type ASC, minimum DESC").
		Find(&rules).Error
	return rules, err
}

// Count returns the number of rules on file, used to decide whether the
// documented defaults need seeding.
func (r *LaborRuleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.LaborMinimumRule{}).Count(&count).Error
	return count, err
}
