package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/repository"
)

// PurchaseOrderService manages material orders and their PO numbers.
type PurchaseOrderService struct {
	db           *gorm.DB
	poRepo       *repository.PurchaseOrderRepository
	sequenceRepo *repository.SequenceRepository
	logger       *zap.Logger
}

func NewPurchaseOrderService(
	db *gorm.DB,
	poRepo *repository.PurchaseOrderRepository,
	sequenceRepo *repository.SequenceRepository,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		db:           db,
		poRepo:       poRepo,
		sequenceRepo: sequenceRepo,
		logger:       logger,
	}
}

// Create writes the purchase order and its PO number in one transaction.
// With a custom number the number is reserved (counter untouched); otherwise
// the next sequential number is allocated.
func (s *PurchaseOrderService) Create(ctx context.Context, req *domain.CreatePurchaseOrderRequest, userID string) (*domain.PurchaseOrder, error) {
	var po *domain.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var number int
		if req.CustomNumber != nil {
			number = *req.CustomNumber
			if err := s.sequenceRepo.ReserveTx(ctx, tx, domain.NumberKindPurchaseOrder, number, userID); err != nil {
				return err
			}
		} else {
			var err error
			number, err = s.sequenceRepo.AllocateTx(ctx, tx, domain.NumberKindPurchaseOrder, userID)
			if err != nil {
				return err
			}
		}

		po = &domain.PurchaseOrder{
			PONumber:     &number,
			Vendor:       req.Vendor,
			Material:     req.Material,
			Cost:         req.Cost,
			Status:       domain.PurchaseOrderStatusOpen,
			EstimateID:   req.EstimateID,
			WorkOrderID:  req.WorkOrderID,
			OrderedByID:  userID,
			ExpectedDate: req.ExpectedDate,
			Notes:        req.Notes,
		}
		return s.poRepo.CreateTx(ctx, tx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created purchase order",
		zap.String("po_id", po.ID.String()),
		zap.Intp("po_number", po.PONumber),
		zap.String("vendor", po.Vendor),
	)
	return po, nil
}

func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	po, err := s.poRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return po, nil
}

func (s *PurchaseOrderService) List(ctx context.Context, page, pageSize int, status *domain.PurchaseOrderStatus, workOrderID *uuid.UUID) ([]domain.PurchaseOrder, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.poRepo.List(ctx, page, pageSize, status, workOrderID)
}

// MarkReceived flags the material as arrived.
func (s *PurchaseOrderService) MarkReceived(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	po, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	po.Status = domain.PurchaseOrderStatusReceived
	if err := s.poRepo.Update(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// VoidNumber voids the purchase order's number and marks the order void, in
// one transaction. The number stays consumed.
func (s *PurchaseOrderService) VoidNumber(ctx context.Context, id uuid.UUID, reason string) (*domain.PurchaseOrder, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrVoidReasonRequired
	}
	po, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.PONumber == nil {
		return nil, repository.ErrNumberNotFound
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.sequenceRepo.VoidTx(ctx, tx, domain.NumberKindPurchaseOrder, *po.PONumber, reason); err != nil {
			return err
		}
		po.Status = domain.PurchaseOrderStatusVoid
		return s.poRepo.UpdateTx(ctx, tx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Voided purchase order number",
		zap.String("po_id", po.ID.String()),
		zap.Intp("po_number", po.PONumber),
		zap.String("reason", reason),
	)
	return po, nil
}

// ReleaseNumber deletes the issuance and clears the order's number, in one
// transaction, making the number reusable.
func (s *PurchaseOrderService) ReleaseNumber(ctx context.Context, id uuid.UUID) (*domain.PurchaseOrder, error) {
	po, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.PONumber == nil {
		return nil, repository.ErrNumberNotFound
	}
	number := *po.PONumber

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.sequenceRepo.ReleaseTx(ctx, tx, domain.NumberKindPurchaseOrder, number); err != nil {
			return err
		}
		po.PONumber = nil
		return s.poRepo.UpdateTx(ctx, tx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Released purchase order number",
		zap.String("po_id", po.ID.String()),
		zap.Int("po_number", number),
	)
	return po, nil
}
