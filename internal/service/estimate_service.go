package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/config"
	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/pricing"
	"github.com/meridian-steel/shop-api/internal/repository"
)

// EstimateService owns the estimate lifecycle. Totals are recomputed
// synchronously on every part mutation so the stored figures are always
// reproducible from the part data.
type EstimateService struct {
	estimateRepo *repository.EstimateRepository
	ruleRepo     *repository.LaborRuleRepository
	rush         pricing.RushConfig
	logger       *zap.Logger
}

func NewEstimateService(
	estimateRepo *repository.EstimateRepository,
	ruleRepo *repository.LaborRuleRepository,
	pricingCfg *config.PricingConfig,
	logger *zap.Logger,
) *EstimateService {
	return &EstimateService{
		estimateRepo: estimateRepo,
		ruleRepo:     ruleRepo,
		rush:         rushConfigFrom(pricingCfg),
		logger:       logger,
	}
}

// rushConfigFrom maps the viper-level schedule onto the pricing package's
// config, falling back to the standing defaults when unset.
func rushConfigFrom(cfg *config.PricingConfig) pricing.RushConfig {
	rc := pricing.DefaultRushConfig()
	if cfg == nil {
		return rc
	}
	if len(cfg.ExpediteTiers) > 0 {
		rc.ExpediteTiers = cfg.ExpediteTiers
	}
	if len(cfg.EmergencyFees) > 0 {
		fees := make(map[domain.EmergencyDay]float64, len(cfg.EmergencyFees))
		for day, fee := range cfg.EmergencyFees {
			fees[domain.EmergencyDay(day)] = fee
		}
		rc.EmergencyFees = fees
	}
	return rc
}

func (s *EstimateService) Create(ctx context.Context, req *domain.CreateEstimateRequest, userID, userName string) (*domain.Estimate, error) {
	estimate := &domain.Estimate{
		CustomerName:    req.CustomerName,
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		Status:          domain.EstimateStatusDraft,
		TaxRate:         req.TaxRate,
		TaxExempt:       req.TaxExempt.Bool(),
		DiscountPercent: req.DiscountPercent,
		DiscountAmount:  req.DiscountAmount,
		TruckingCost:    req.TruckingCost,
		MinimumOverride: req.MinimumOverride.Bool(),
		Notes:           req.Notes,
		CreatedByID:     userID,
		CreatedByName:   userName,
	}

	if err := s.estimateRepo.Create(ctx, estimate); err != nil {
		return nil, err
	}

	s.logger.Info("Created estimate",
		zap.String("estimate_id", estimate.ID.String()),
		zap.String("customer", estimate.CustomerName),
	)
	return estimate, nil
}

func (s *EstimateService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Estimate, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return estimate, nil
}

func (s *EstimateService) List(ctx context.Context, page, pageSize int, status *domain.EstimateStatus, customer string) ([]domain.Estimate, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.estimateRepo.List(ctx, page, pageSize, status, customer)
}

// Update applies header-level changes and recomputes totals, since tax,
// discount, trucking, and the minimum override all feed the grand total.
func (s *EstimateService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateEstimateRequest) (*domain.Estimate, error) {
	estimate, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if estimate.Status == domain.EstimateStatusConverted {
		return nil, ErrEstimateConverted
	}

	if req.CustomerName != nil {
		estimate.CustomerName = *req.CustomerName
	}
	if req.ContactName != nil {
		estimate.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		estimate.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		estimate.ContactPhone = *req.ContactPhone
	}
	if req.TaxRate != nil {
		estimate.TaxRate = *req.TaxRate
	}
	if req.TaxExempt != nil {
		estimate.TaxExempt = req.TaxExempt.Bool()
	}
	if req.DiscountPercent != nil {
		estimate.DiscountPercent = *req.DiscountPercent
	}
	if req.DiscountAmount != nil {
		estimate.DiscountAmount = *req.DiscountAmount
	}
	if req.TruckingCost != nil {
		estimate.TruckingCost = *req.TruckingCost
	}
	if req.MinimumOverride != nil {
		estimate.MinimumOverride = req.MinimumOverride.Bool()
	}
	if req.Notes != nil {
		estimate.Notes = *req.Notes
	}

	if _, err := s.recompute(ctx, estimate); err != nil {
		return nil, err
	}
	return estimate, nil
}

func (s *EstimateService) Delete(ctx context.Context, id uuid.UUID) error {
	estimate, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if estimate.Status == domain.EstimateStatusConverted {
		return ErrEstimateConverted
	}
	return s.estimateRepo.Delete(ctx, id)
}

// SetStatus moves the estimate between draft/sent/declined. Conversion is
// owned by the work-order service.
func (s *EstimateService) SetStatus(ctx context.Context, id uuid.UUID, status domain.EstimateStatus) (*domain.Estimate, error) {
	if status == domain.EstimateStatusConverted {
		return nil, ErrInvalidStatus
	}
	estimate, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if estimate.Status == domain.EstimateStatusConverted {
		return nil, ErrEstimateConverted
	}
	estimate.Status = status
	if err := s.estimateRepo.Update(ctx, estimate); err != nil {
		return nil, err
	}
	return estimate, nil
}

// AddPart appends a part, numbers it at the end of the sequence, and
// recomputes totals.
func (s *EstimateService) AddPart(ctx context.Context, estimateID uuid.UUID, req *domain.PartRequest) (*domain.Estimate, error) {
	estimate, err := s.GetByID(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if estimate.Status == domain.EstimateStatusConverted {
		return nil, ErrEstimateConverted
	}
	if !req.PartType.IsValid() {
		return nil, ErrInvalidPartType
	}

	part := partFromRequest(req)
	part.EstimateID = &estimate.ID
	part.PartNumber = len(estimate.Parts) + 1

	if err := s.estimateRepo.CreatePart(ctx, part); err != nil {
		return nil, err
	}
	estimate.Parts = append(estimate.Parts, *part)

	return s.recompute(ctx, estimate)
}

// UpdatePart replaces a part's fields and recomputes totals.
func (s *EstimateService) UpdatePart(ctx context.Context, estimateID, partID uuid.UUID, req *domain.PartRequest) (*domain.Estimate, error) {
	estimate, err := s.GetByID(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if estimate.Status == domain.EstimateStatusConverted {
		return nil, ErrEstimateConverted
	}
	if !req.PartType.IsValid() {
		return nil, ErrInvalidPartType
	}

	found := false
	for i := range estimate.Parts {
		if estimate.Parts[i].ID != partID {
			continue
		}
		updated := partFromRequest(req)
		updated.BaseModel = estimate.Parts[i].BaseModel
		updated.EstimateID = estimate.Parts[i].EstimateID
		updated.PartNumber = estimate.Parts[i].PartNumber
		estimate.Parts[i] = *updated
		found = true
		break
	}
	if !found {
		return nil, ErrNotFound
	}

	return s.recompute(ctx, estimate)
}

// RemovePart deletes a part, renumbers the remainder 1..N with no gaps, and
// recomputes totals.
func (s *EstimateService) RemovePart(ctx context.Context, estimateID, partID uuid.UUID) (*domain.Estimate, error) {
	estimate, err := s.GetByID(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if estimate.Status == domain.EstimateStatusConverted {
		return nil, ErrEstimateConverted
	}

	idx := -1
	for i := range estimate.Parts {
		if estimate.Parts[i].ID == partID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	if err := s.estimateRepo.DeletePart(ctx, estimateID, partID); err != nil {
		return nil, err
	}
	estimate.Parts = append(estimate.Parts[:idx], estimate.Parts[idx+1:]...)
	for i := range estimate.Parts {
		estimate.Parts[i].PartNumber = i + 1
	}

	return s.recompute(ctx, estimate)
}

// Recompute recalculates totals from stored part data. Used by callers to
// self-heal cached totals; the computation is idempotent.
func (s *EstimateService) Recompute(ctx context.Context, estimateID uuid.UUID) (*domain.Estimate, error) {
	estimate, err := s.GetByID(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	return s.recompute(ctx, estimate)
}

// Breakdown returns the totals with the aggregator's intermediate figures,
// without persisting anything.
func (s *EstimateService) Breakdown(ctx context.Context, estimateID uuid.UUID) (*domain.Estimate, *domain.TotalsBreakdown, error) {
	estimate, err := s.GetByID(ctx, estimateID)
	if err != nil {
		return nil, nil, err
	}
	rules, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, nil, err
	}
	bd := pricing.ComputeTotals(estimate, rules, s.rush)
	return estimate, &bd, nil
}

func (s *EstimateService) recompute(ctx context.Context, estimate *domain.Estimate) (*domain.Estimate, error) {
	rules, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	pricing.ComputeTotals(estimate, rules, s.rush)

	if err := s.estimateRepo.SaveWithParts(ctx, estimate); err != nil {
		return nil, err
	}

	s.logger.Debug("Recomputed estimate totals",
		zap.String("estimate_id", estimate.ID.String()),
		zap.Float64("parts_subtotal", estimate.PartsSubtotal),
		zap.Float64("grand_total", estimate.GrandTotal),
	)
	return estimate, nil
}

func partFromRequest(req *domain.PartRequest) *domain.Part {
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}
	materialSource := req.MaterialSource
	if materialSource == "" {
		materialSource = domain.MaterialSourceShop
	}
	rounding := req.MaterialRounding
	if rounding == "" {
		rounding = domain.RoundingNone
	}

	return &domain.Part{
		PartType:    req.PartType,
		Quantity:    quantity,
		Description: req.Description,

		Thickness:       req.Thickness,
		Width:           req.Width,
		Length:          req.Length,
		InsideDiameter:  req.InsideDiameter,
		OutsideDiameter: req.OutsideDiameter,

		MaterialSource:        materialSource,
		MaterialUnitCost:      req.MaterialUnitCost,
		MaterialMarkupPercent: req.MaterialMarkupPercent,
		MaterialRounding:      rounding,

		RollingCost: req.RollingCost,
		LaborTotal:  req.LaborTotal,

		HasDrilling:  req.HasDrilling.Bool(),
		DrillingCost: req.DrillingCost,
		HasCutting:   req.HasCutting.Bool(),
		CuttingCost:  req.CuttingCost,
		HasFitting:   req.HasFitting.Bool(),
		FittingCost:  req.FittingCost,
		HasWelding:   req.HasWelding.Bool(),
		WeldingCost:  req.WeldingCost,

		OtherServicesCost:          req.OtherServicesCost,
		OtherServicesMarkupPercent: req.OtherServicesMarkupPercent,

		MaterialTotal: req.MaterialTotal,
		PartTotal:     req.PartTotal,

		Details: req.Details,
	}
}
