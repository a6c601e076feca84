package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/meridian-steel/shop-api/internal/domain"
)

// SequenceRepository issues unique, increasing reference numbers (PO and DR).
// The sequence_counters row holds the next value to hand out but is only a
// hint; number_issuances is the ground truth of what has actually been given
// out. Concurrent allocations are serialized by a row lock on the counter,
// never by an in-process mutex.
type SequenceRepository struct {
	db     *gorm.DB
	floors map[domain.NumberKind]int
}

// NewSequenceRepository creates a new SequenceRepository. Floors are the
// cold-start minimums per kind: a fresh counter never seeds below its floor.
func NewSequenceRepository(db *gorm.DB, floors map[domain.NumberKind]int) *SequenceRepository {
	return &SequenceRepository{db: db, floors: floors}
}

// Allocate issues the next number for the kind in its own transaction and
// records the issuance.
func (r *SequenceRepository) Allocate(ctx context.Context, kind domain.NumberKind, issuedByID string) (int, error) {
	var number int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		number, err = r.AllocateTx(ctx, tx, kind, issuedByID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return number, nil
}

// AllocateTx issues the next number inside a caller-owned transaction, so
// dependent writes (work order rows, purchase records) commit or roll back
// together with the counter increment and the issuance row.
//
// If the counter row does not exist yet, the sequence is seeded from the
// maximum of: the highest issued number on file, the highest number already
// carried by the entity table (a cross-check against rows written out-of-band
// by the previous system), and the configured floor.
func (r *SequenceRepository) AllocateTx(ctx context.Context, tx *gorm.DB, kind domain.NumberKind, issuedByID string) (int, error) {
	var counter domain.SequenceCounter
	var number int

	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("name = ?", kind.CounterName()).
		First(&counter)

	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		seed, err := r.seedValue(tx, kind)
		if err != nil {
			return 0, err
		}
		number = seed
		counter = domain.SequenceCounter{
			Name:      kind.CounterName(),
			NextValue: seed + 1,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, fmt.Errorf("failed to create sequence counter: %w", err)
		}

	case result.Error != nil:
		return 0, fmt.Errorf("failed to get sequence counter: %w", result.Error)

	default:
		number = counter.NextValue
		if err := tx.Model(&counter).Updates(map[string]interface{}{
			"next_value": number + 1,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return 0, fmt.Errorf("failed to update sequence counter: %w", err)
		}
	}

	// The counter is a hint: skip past numbers already on file (e.g. reserved
	// out of sequence) rather than failing the unique index.
	for {
		var count int64
		if err := tx.Model(&domain.NumberIssuance{}).
			Where("kind = ? AND number = ?", kind, number).
			Count(&count).Error; err != nil {
			return 0, fmt.Errorf("failed to check issuance: %w", err)
		}
		if count == 0 {
			break
		}
		number++
		if err := tx.Model(&domain.SequenceCounter{}).
			Where("name = ?", kind.CounterName()).
			Updates(map[string]interface{}{
				"next_value": number + 1,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return 0, fmt.Errorf("failed to advance sequence counter: %w", err)
		}
	}

	issuance := domain.NumberIssuance{
		Kind:       kind,
		Number:     number,
		Status:     domain.IssuanceStatusActive,
		IssuedByID: issuedByID,
	}
	if err := tx.Create(&issuance).Error; err != nil {
		return 0, fmt.Errorf("failed to record issuance: %w", err)
	}

	return number, nil
}

// seedValue computes the first number to hand out for an uninitialized
// counter: max(issuance max, entity max, floor) + 1.
func (r *SequenceRepository) seedValue(tx *gorm.DB, kind domain.NumberKind) (int, error) {
	var issuanceMax int
	if err := tx.Model(&domain.NumberIssuance{}).
		Where("kind = ?", kind).
		Select("COALESCE(MAX(number), 0)").
		Scan(&issuanceMax).Error; err != nil {
		return 0, fmt.Errorf("failed to get issuance max: %w", err)
	}

	entityMax, err := r.entityMax(tx, kind)
	if err != nil {
		return 0, err
	}

	seed := issuanceMax
	if entityMax > seed {
		seed = entityMax
	}
	if floor := r.floors[kind]; floor > seed {
		seed = floor
	}
	return seed + 1, nil
}

// entityMax reads the highest number already present on the entity table
// that carries this numbering independently of the issuance ledger.
func (r *SequenceRepository) entityMax(tx *gorm.DB, kind domain.NumberKind) (int, error) {
	var max int
	var err error
	switch kind {
	case domain.NumberKindPurchaseOrder:
		err = tx.Model(&domain.PurchaseOrder{}).
			Select("COALESCE(MAX(po_number), 0)").
			Scan(&max).Error
	case domain.NumberKindDeliveryReceipt:
		err = tx.Model(&domain.WorkOrder{}).
			Select("COALESCE(MAX(dr_number), 0)").
			Scan(&max).Error
	default:
		return 0, fmt.Errorf("unknown number kind %q", kind)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get entity max for %s: %w", kind, err)
	}
	return max, nil
}

// Reserve records an explicitly chosen number. It rejects with
// ErrDuplicateNumber when the number is already on file, and deliberately
// leaves the counter untouched: reserving out of sequence must not move the
// next sequential value.
func (r *SequenceRepository) Reserve(ctx context.Context, kind domain.NumberKind, number int, issuedByID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.ReserveTx(ctx, tx, kind, number, issuedByID)
	})
}

// ReserveTx is Reserve inside a caller-owned transaction.
func (r *SequenceRepository) ReserveTx(ctx context.Context, tx *gorm.DB, kind domain.NumberKind, number int, issuedByID string) error {
	var count int64
	if err := tx.Model(&domain.NumberIssuance{}).
		Where("kind = ? AND number = ?", kind, number).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check issuance: %w", err)
	}
	if count > 0 {
		return ErrDuplicateNumber
	}

	issuance := domain.NumberIssuance{
		Kind:       kind,
		Number:     number,
		Status:     domain.IssuanceStatusActive,
		IssuedByID: issuedByID,
	}
	if err := tx.Create(&issuance).Error; err != nil {
		return fmt.Errorf("failed to record issuance: %w", err)
	}
	return nil
}

// Void marks an issuance inactive in its own transaction. The number stays
// on file and is never reused automatically.
func (r *SequenceRepository) Void(ctx context.Context, kind domain.NumberKind, number int, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.VoidTx(ctx, tx, kind, number, reason)
	})
}

// VoidTx is Void inside a caller-owned transaction, so dependent writes
// (a linked purchase order's status flip) commit or roll back with the void.
// Rejects before any mutation when the issuance is missing or already void.
func (r *SequenceRepository) VoidTx(ctx context.Context, tx *gorm.DB, kind domain.NumberKind, number int, reason string) error {
	var issuance domain.NumberIssuance
	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ? AND number = ?", kind, number).
		First(&issuance)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return ErrNumberNotFound
	}
	if result.Error != nil {
		return fmt.Errorf("failed to get issuance: %w", result.Error)
	}
	if issuance.Status == domain.IssuanceStatusVoid {
		return ErrNumberAlreadyVoid
	}

	now := time.Now()
	return tx.Model(&issuance).Updates(map[string]interface{}{
		"status":      domain.IssuanceStatusVoid,
		"void_reason": reason,
		"voided_at":   now,
		"updated_at":  now,
	}).Error
}

// Release deletes the issuance entirely and clears back-references from the
// entity table, making the number eligible for a future Reserve or for the
// counter to catch back up to it.
func (r *SequenceRepository) Release(ctx context.Context, kind domain.NumberKind, number int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.ReleaseTx(ctx, tx, kind, number)
	})
}

// ReleaseTx is Release inside a caller-owned transaction.
func (r *SequenceRepository) ReleaseTx(ctx context.Context, tx *gorm.DB, kind domain.NumberKind, number int) error {
	var issuance domain.NumberIssuance
	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ? AND number = ?", kind, number).
		First(&issuance)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return ErrNumberNotFound
	}
	if result.Error != nil {
		return fmt.Errorf("failed to get issuance: %w", result.Error)
	}

	switch kind {
	case domain.NumberKindPurchaseOrder:
		if err := tx.Model(&domain.PurchaseOrder{}).
			Where("po_number = ?", number).
			Update("po_number", nil).Error; err != nil {
			return fmt.Errorf("failed to clear purchase order number: %w", err)
		}
	case domain.NumberKindDeliveryReceipt:
		if err := tx.Model(&domain.WorkOrder{}).
			Where("dr_number = ?", number).
			Update("dr_number", nil).Error; err != nil {
			return fmt.Errorf("failed to clear work order number: %w", err)
		}
	}

	if err := tx.Delete(&issuance).Error; err != nil {
		return fmt.Errorf("failed to delete issuance: %w", err)
	}
	return nil
}

// GetIssuance looks up a single issuance.
func (r *SequenceRepository) GetIssuance(ctx context.Context, kind domain.NumberKind, number int) (*domain.NumberIssuance, error) {
	var issuance domain.NumberIssuance
	err := r.db.WithContext(ctx).
		Where("kind = ? AND number = ?", kind, number).
		First(&issuance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNumberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &issuance, nil
}

// ListIssuances returns issuances for a kind, newest first.
func (r *SequenceRepository) ListIssuances(ctx context.Context, kind domain.NumberKind, limit int) ([]domain.NumberIssuance, error) {
	var issuances []domain.NumberIssuance
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Order("number DESC").
		Limit(limit).
		Find(&issuances).Error
	return issuances, err
}

// CurrentValue reads the counter's next value without consuming it.
// Returns 0 when the counter has never been initialized.
func (r *SequenceRepository) CurrentValue(ctx context.Context, kind domain.NumberKind) (int, error) {
	var counter domain.SequenceCounter
	err := r.db.WithContext(ctx).
		Where("name = ?", kind.CounterName()).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return counter.NextValue, nil
}

// EnsureFloor raises the counter to at least value+1 if it exists, used by
// the legacy reconciliation job when the retired system's tables show higher
// numbers than ours.
func (r *SequenceRepository) EnsureFloor(ctx context.Context, kind domain.NumberKind, value int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter domain.SequenceCounter
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", kind.CounterName()).
			First(&counter)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			// Leave seeding to the first Allocate; it consults the same data.
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get sequence counter: %w", result.Error)
		}
		if counter.NextValue >= value+1 {
			return nil
		}
		return tx.Model(&counter).Updates(map[string]interface{}{
			"next_value": value + 1,
			"updated_at": time.Now(),
		}).Error
	})
}
