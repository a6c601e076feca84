package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/repository"
)

// NumberService fronts the reference-number allocator: it validates input,
// formats numbers for display, and logs issuance activity.
type NumberService struct {
	sequenceRepo *repository.SequenceRepository
	logger       *zap.Logger
}

func NewNumberService(sequenceRepo *repository.SequenceRepository, logger *zap.Logger) *NumberService {
	return &NumberService{
		sequenceRepo: sequenceRepo,
		logger:       logger,
	}
}

// FormatNumber renders a number the way the shop's paperwork shows it:
// "PO7766" and "DR-2956".
func FormatNumber(kind domain.NumberKind, number int) string {
	switch kind {
	case domain.NumberKindPurchaseOrder:
		return fmt.Sprintf("PO%d", number)
	case domain.NumberKindDeliveryReceipt:
		return fmt.Sprintf("DR-%d", number)
	}
	return fmt.Sprintf("%d", number)
}

// Allocate issues the next number of the kind.
func (s *NumberService) Allocate(ctx context.Context, kind domain.NumberKind, issuedByID string) (int, error) {
	if !kind.IsValid() {
		return 0, ErrInvalidNumberKind
	}

	number, err := s.sequenceRepo.Allocate(ctx, kind, issuedByID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Allocated reference number",
		zap.String("kind", string(kind)),
		zap.Int("number", number),
		zap.String("issued_by", issuedByID),
	)
	return number, nil
}

// Reserve records an explicitly chosen number out of sequence.
func (s *NumberService) Reserve(ctx context.Context, kind domain.NumberKind, number int, issuedByID string) error {
	if !kind.IsValid() {
		return ErrInvalidNumberKind
	}

	if err := s.sequenceRepo.Reserve(ctx, kind, number, issuedByID); err != nil {
		return err
	}

	s.logger.Info("Reserved reference number",
		zap.String("kind", string(kind)),
		zap.Int("number", number),
		zap.String("issued_by", issuedByID),
	)
	return nil
}

// Void marks a number inactive. The reason is mandatory and checked before
// any mutation.
func (s *NumberService) Void(ctx context.Context, kind domain.NumberKind, number int, reason string) error {
	if !kind.IsValid() {
		return ErrInvalidNumberKind
	}
	if strings.TrimSpace(reason) == "" {
		return ErrVoidReasonRequired
	}

	if err := s.sequenceRepo.Void(ctx, kind, number, reason); err != nil {
		return err
	}

	s.logger.Info("Voided reference number",
		zap.String("kind", string(kind)),
		zap.Int("number", number),
		zap.String("reason", reason),
	)
	return nil
}

// Release deletes an issuance and clears entity back-references, making the
// number reusable.
func (s *NumberService) Release(ctx context.Context, kind domain.NumberKind, number int) error {
	if !kind.IsValid() {
		return ErrInvalidNumberKind
	}

	if err := s.sequenceRepo.Release(ctx, kind, number); err != nil {
		return err
	}

	s.logger.Info("Released reference number",
		zap.String("kind", string(kind)),
		zap.Int("number", number),
	)
	return nil
}

// Get looks up a single issuance.
func (s *NumberService) Get(ctx context.Context, kind domain.NumberKind, number int) (*domain.NumberIssuance, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidNumberKind
	}
	return s.sequenceRepo.GetIssuance(ctx, kind, number)
}

// List returns recent issuances for a kind.
func (s *NumberService) List(ctx context.Context, kind domain.NumberKind, limit int) ([]domain.NumberIssuance, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidNumberKind
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.sequenceRepo.ListIssuances(ctx, kind, limit)
}
