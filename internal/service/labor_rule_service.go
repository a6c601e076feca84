package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/repository"
)

// LaborRuleService administers the minimum-charge rule set.
type LaborRuleService struct {
	ruleRepo *repository.LaborRuleRepository
	logger   *zap.Logger
}

func NewLaborRuleService(ruleRepo *repository.LaborRuleRepository, logger *zap.Logger) *LaborRuleService {
	return &LaborRuleService{ruleRepo: ruleRepo, logger: logger}
}

// defaultRules is the documented standing rule set, seeded when the table is
// empty.
func defaultRules() []domain.LaborMinimumRule {
	fptr := func(v float64) *float64 { return &v }
	return []domain.LaborMinimumRule{
		{PartType: domain.PartTypePlateRoll, Label: `Plate <= 3/8"`, MaxSize: fptr(0.375), Minimum: 125, IsActive: true},
		{PartType: domain.PartTypePlateRoll, Label: `Plate <= 3/8" (24-60" wide)`, MaxSize: fptr(0.375), MinWidth: fptr(24), MaxWidth: fptr(60), Minimum: 150, IsActive: true},
		{PartType: domain.PartTypePlateRoll, Label: `Plate > 3/8"`, MinSize: fptr(0.376), Minimum: 200, IsActive: true},
		{PartType: domain.PartTypeAngleRoll, Label: `Angle <= 3"`, MaxSize: fptr(3), Minimum: 125, IsActive: true},
		{PartType: domain.PartTypeAngleRoll, Label: `Angle > 3"`, MinSize: fptr(3.001), Minimum: 175, IsActive: true},
		{PartType: domain.PartTypeBeamRoll, Label: "Beam", Minimum: 250, IsActive: true},
		{PartType: domain.PartTypeConeRoll, Label: "Cone", Minimum: 300, IsActive: true},
		{PartType: domain.PartTypePipeRoll, Label: "Pipe", Minimum: 150, IsActive: true},
	}
}

// SeedDefaults installs the documented default rules when none are
// configured. Safe to call on every startup.
func (s *LaborRuleService) SeedDefaults(ctx context.Context) error {
	count, err := s.ruleRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rules := defaultRules()
	for i := range rules {
		if err := s.ruleRepo.Create(ctx, &rules[i]); err != nil {
			return err
		}
	}

	s.logger.Info("Seeded default labor minimum rules", zap.Int("count", len(rules)))
	return nil
}

func (s *LaborRuleService) Create(ctx context.Context, req *domain.LaborMinimumRuleRequest) (*domain.LaborMinimumRule, error) {
	if !req.PartType.IsValid() {
		return nil, ErrInvalidPartType
	}

	rule := &domain.LaborMinimumRule{
		PartType: req.PartType,
		Label:    req.Label,
		MinSize:  req.MinSize,
		MaxSize:  req.MaxSize,
		MinWidth: req.MinWidth,
		MaxWidth: req.MaxWidth,
		Minimum:  req.Minimum,
		IsActive: true,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *LaborRuleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LaborMinimumRule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *LaborRuleService) Update(ctx context.Context, id uuid.UUID, req *domain.LaborMinimumRuleRequest) (*domain.LaborMinimumRule, error) {
	if !req.PartType.IsValid() {
		return nil, ErrInvalidPartType
	}

	rule, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rule.PartType = req.PartType
	rule.Label = req.Label
	rule.MinSize = req.MinSize
	rule.MaxSize = req.MaxSize
	rule.MinWidth = req.MinWidth
	rule.MaxWidth = req.MaxWidth
	rule.Minimum = req.Minimum
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *LaborRuleService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.ruleRepo.Delete(ctx, id)
}

func (s *LaborRuleService) List(ctx context.Context, includeInactive bool) ([]domain.LaborMinimumRule, error) {
	if includeInactive {
		return s.ruleRepo.ListAll(ctx)
	}
	return s.ruleRepo.ListActive(ctx)
}
