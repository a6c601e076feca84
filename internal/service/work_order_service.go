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

// WorkOrderService converts accepted estimates into work orders and manages
// the shop-floor lifecycle afterwards.
type WorkOrderService struct {
	db            *gorm.DB
	workOrderRepo *repository.WorkOrderRepository
	estimateRepo  *repository.EstimateRepository
	sequenceRepo  *repository.SequenceRepository
	logger        *zap.Logger
}

func NewWorkOrderService(
	db *gorm.DB,
	workOrderRepo *repository.WorkOrderRepository,
	estimateRepo *repository.EstimateRepository,
	sequenceRepo *repository.SequenceRepository,
	logger *zap.Logger,
) *WorkOrderService {
	return &WorkOrderService{
		db:            db,
		workOrderRepo: workOrderRepo,
		estimateRepo:  estimateRepo,
		sequenceRepo:  sequenceRepo,
		logger:        logger,
	}
}

// ConvertEstimate turns an estimate into a work order in one transaction:
// the DR number allocation, the work order row, the verbatim part copies,
// the file re-links, and the estimate status flip all commit or roll back
// together. A failure anywhere leaves the estimate unconverted and no number
// consumed.
func (s *WorkOrderService) ConvertEstimate(ctx context.Context, estimateID uuid.UUID, req *domain.ConvertEstimateRequest, userID string) (*domain.WorkOrder, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, estimateID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if estimate.Status == domain.EstimateStatusConverted {
		return nil, ErrEstimateConverted
	}

	var workOrder *domain.WorkOrder
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		drNumber, err := s.sequenceRepo.AllocateTx(ctx, tx, domain.NumberKindDeliveryReceipt, userID)
		if err != nil {
			return err
		}

		wo := &domain.WorkOrder{
			EstimateID:   estimate.ID,
			DRNumber:     &drNumber,
			CustomerName: estimate.CustomerName,
			Status:       domain.WorkOrderStatusOpen,
			// Pricing is copied verbatim from the estimate, never recomputed.
			PartsSubtotal: estimate.PartsSubtotal,
			TaxAmount:     estimate.TaxAmount,
			GrandTotal:    estimate.GrandTotal,
			PromisedDate:  req.PromisedDate,
			Notes:         req.Notes,
		}
		if err := tx.Create(wo).Error; err != nil {
			return err
		}

		for i := range estimate.Parts {
			src := &estimate.Parts[i]
			partCopy := domain.WorkOrderPart{
				WorkOrderID: wo.ID,
				SourceID:    src.ID,
				PartNumber:  src.PartNumber,
				PartType:    src.PartType,
				Quantity:    src.Quantity,

				Description:     src.Description,
				Thickness:       src.Thickness,
				Width:           src.Width,
				Length:          src.Length,
				InsideDiameter:  src.InsideDiameter,
				OutsideDiameter: src.OutsideDiameter,

				MaterialSource:     src.MaterialSource,
				MaterialTotal:      src.MaterialTotal,
				OtherServicesTotal: src.OtherServicesTotal,
				PartTotal:          src.PartTotal,

				Details: src.Details,
			}
			if err := tx.Create(&partCopy).Error; err != nil {
				return err
			}
		}

		// Drawings follow the job to the shop floor.
		if err := tx.Model(&domain.File{}).
			Where("estimate_id = ?", estimate.ID).
			Update("work_order_id", wo.ID).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.Estimate{}).
			Where("id = ?", estimate.ID).
			Updates(map[string]interface{}{
				"status":        domain.EstimateStatusConverted,
				"work_order_id": wo.ID,
			}).Error; err != nil {
			return err
		}

		workOrder = wo
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Converted estimate to work order",
		zap.String("estimate_id", estimate.ID.String()),
		zap.String("work_order_id", workOrder.ID.String()),
		zap.Intp("dr_number", workOrder.DRNumber),
	)

	return s.GetByID(ctx, workOrder.ID)
}

func (s *WorkOrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.WorkOrder, error) {
	wo, err := s.workOrderRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return wo, nil
}

func (s *WorkOrderService) GetByDRNumber(ctx context.Context, drNumber int) (*domain.WorkOrder, error) {
	wo, err := s.workOrderRepo.GetByDRNumber(ctx, drNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return wo, nil
}

func (s *WorkOrderService) List(ctx context.Context, page, pageSize int, status *domain.WorkOrderStatus) ([]domain.WorkOrder, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.workOrderRepo.List(ctx, page, pageSize, status)
}

// SetStatus advances a work order through the shop-floor states.
func (s *WorkOrderService) SetStatus(ctx context.Context, id uuid.UUID, status domain.WorkOrderStatus) (*domain.WorkOrder, error) {
	wo, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch status {
	case domain.WorkOrderStatusOpen, domain.WorkOrderStatusInShop,
		domain.WorkOrderStatusShipped, domain.WorkOrderStatusCompleted,
		domain.WorkOrderStatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	wo.Status = status
	if err := s.workOrderRepo.Update(ctx, wo); err != nil {
		return nil, err
	}
	return wo, nil
}
