package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/testutil"
)

func newSequenceRepo(t *testing.T) *SequenceRepository {
	db := testutil.NewTestDB(t)
	return NewSequenceRepository(db, map[domain.NumberKind]int{
		domain.NumberKindPurchaseOrder:   7500,
		domain.NumberKindDeliveryReceipt: 2950,
	})
}

func TestAllocateColdStartUsesFloor(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	n, err := repo.Allocate(ctx, domain.NumberKindDeliveryReceipt, "tester")
	require.NoError(t, err)
	assert.Equal(t, 2951, n, "first allocation on an empty system is floor+1")

	n2, err := repo.Allocate(ctx, domain.NumberKindDeliveryReceipt, "tester")
	require.NoError(t, err)
	assert.Equal(t, 2952, n2)
}

func TestAllocateSeedsFromIssuanceAndEntityMax(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.db.Create(&domain.NumberIssuance{
		Kind:   domain.NumberKindDeliveryReceipt,
		Number: 2950,
		Status: domain.IssuanceStatusActive,
	}).Error)

	// A work order written out-of-band carries a higher number than the
	// issuance ledger knows about.
	dr := 2955
	require.NoError(t, repo.db.Create(&domain.WorkOrder{
		CustomerName: "Acme Tanks",
		Status:       domain.WorkOrderStatusOpen,
		DRNumber:     &dr,
	}).Error)

	n, err := repo.Allocate(ctx, domain.NumberKindDeliveryReceipt, "tester")
	require.NoError(t, err)
	assert.Equal(t, 2956, n)
}

func TestAllocateSequentialDistinct(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	seen := make(map[int]bool)
	prev := 0
	for i := 0; i < 20; i++ {
		n, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
		require.NoError(t, err)
		assert.False(t, seen[n], "number %d issued twice", n)
		assert.Greater(t, n, prev)
		seen[n] = true
		prev = n
	}
}

func TestAllocateConcurrentDistinct(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	// Serialization comes from the counter row lock, never from an
	// in-process mutex.
	const workers = 16
	results := make(chan int, workers)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.Allocate(ctx, domain.NumberKindDeliveryReceipt, "tester")
			if err != nil {
				errs <- err
				return
			}
			results <- n
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	seen := make(map[int]bool)
	for n := range results {
		assert.False(t, seen[n], "number %d issued twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers, "every allocation yields a distinct number")
}

func TestAllocateIndependentKinds(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	po, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)
	dr, err := repo.Allocate(ctx, domain.NumberKindDeliveryReceipt, "tester")
	require.NoError(t, err)

	assert.Equal(t, 7501, po)
	assert.Equal(t, 2951, dr)
}

func TestAllocateSkipsReservedNumbers(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	first, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)

	// Reserve the number the counter would hand out next.
	require.NoError(t, repo.Reserve(ctx, domain.NumberKindPurchaseOrder, first+1, "tester"))

	n, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)
	assert.Equal(t, first+2, n, "allocation must skip past a reserved number")
}

func TestReserveDuplicateRejected(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	n, err := repo.Allocate(ctx, domain.NumberKindDeliveryReceipt, "tester")
	require.NoError(t, err)

	before, err := repo.CurrentValue(ctx, domain.NumberKindDeliveryReceipt)
	require.NoError(t, err)

	err = repo.Reserve(ctx, domain.NumberKindDeliveryReceipt, n, "tester")
	assert.ErrorIs(t, err, ErrDuplicateNumber)

	after, err := repo.CurrentValue(ctx, domain.NumberKindDeliveryReceipt)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a rejected reservation must not move the counter")

	var count int64
	require.NoError(t, repo.db.Model(&domain.NumberIssuance{}).
		Where("kind = ? AND number = ?", domain.NumberKindDeliveryReceipt, n).
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "no duplicate issuance row")
}

func TestReserveDoesNotTouchCounter(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	_, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)
	before, err := repo.CurrentValue(ctx, domain.NumberKindPurchaseOrder)
	require.NoError(t, err)

	require.NoError(t, repo.Reserve(ctx, domain.NumberKindPurchaseOrder, 9000, "tester"))

	after, err := repo.CurrentValue(ctx, domain.NumberKindPurchaseOrder)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestVoidAndVoidAgain(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	n, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)

	require.NoError(t, repo.Void(ctx, domain.NumberKindPurchaseOrder, n, "ordered in error"))

	issuance, err := repo.GetIssuance(ctx, domain.NumberKindPurchaseOrder, n)
	require.NoError(t, err)
	assert.Equal(t, domain.IssuanceStatusVoid, issuance.Status)
	assert.Equal(t, "ordered in error", issuance.VoidReason)
	require.NotNil(t, issuance.VoidedAt)

	err = repo.Void(ctx, domain.NumberKindPurchaseOrder, n, "again")
	assert.ErrorIs(t, err, ErrNumberAlreadyVoid)
}

func TestVoidTxRollsBackWithCallerTransaction(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	n, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)

	errAbort := errors.New("dependent write failed")
	err = repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.VoidTx(ctx, tx, domain.NumberKindPurchaseOrder, n, "misprint"); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	issuance, err := repo.GetIssuance(ctx, domain.NumberKindPurchaseOrder, n)
	require.NoError(t, err)
	assert.Equal(t, domain.IssuanceStatusActive, issuance.Status, "void rolled back with the caller's transaction")
}

func TestReleaseTxRollsBackWithCallerTransaction(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	n, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)

	errAbort := errors.New("dependent write failed")
	err = repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.ReleaseTx(ctx, tx, domain.NumberKindPurchaseOrder, n); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	_, err = repo.GetIssuance(ctx, domain.NumberKindPurchaseOrder, n)
	require.NoError(t, err, "issuance survives the rolled-back release")
}

func TestVoidUnknownNumber(t *testing.T) {
	repo := newSequenceRepo(t)
	err := repo.Void(context.Background(), domain.NumberKindPurchaseOrder, 12345, "nope")
	assert.ErrorIs(t, err, ErrNumberNotFound)
}

func TestVoidedNumberNotReused(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	n, err := repo.Allocate(ctx, domain.NumberKindDeliveryReceipt, "tester")
	require.NoError(t, err)
	require.NoError(t, repo.Void(ctx, domain.NumberKindDeliveryReceipt, n, "cancelled"))

	next, err := repo.Allocate(ctx, domain.NumberKindDeliveryReceipt, "tester")
	require.NoError(t, err)
	assert.Equal(t, n+1, next, "voided numbers stay consumed")

	err = repo.Reserve(ctx, domain.NumberKindDeliveryReceipt, n, "tester")
	assert.ErrorIs(t, err, ErrDuplicateNumber, "voided numbers cannot be reserved either")
}

func TestReleaseClearsBackReferences(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	n, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)

	po := domain.PurchaseOrder{
		PONumber: &n,
		Vendor:   "Steel Supply Co",
		Status:   domain.PurchaseOrderStatusOpen,
	}
	require.NoError(t, repo.db.Create(&po).Error)

	require.NoError(t, repo.Release(ctx, domain.NumberKindPurchaseOrder, n))

	_, err = repo.GetIssuance(ctx, domain.NumberKindPurchaseOrder, n)
	assert.ErrorIs(t, err, ErrNumberNotFound)

	var reloaded domain.PurchaseOrder
	require.NoError(t, repo.db.First(&reloaded, "id = ?", po.ID).Error)
	assert.Nil(t, reloaded.PONumber, "back-reference cleared")

	// Released numbers become reservable again.
	require.NoError(t, repo.Reserve(ctx, domain.NumberKindPurchaseOrder, n, "tester"))
}

func TestEnsureFloorRaisesCounter(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	n, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)

	require.NoError(t, repo.EnsureFloor(ctx, domain.NumberKindPurchaseOrder, n+50))

	next, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)
	assert.Equal(t, n+51, next)
}

func TestEnsureFloorNoopWhenLower(t *testing.T) {
	repo := newSequenceRepo(t)
	ctx := context.Background()

	n, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)

	require.NoError(t, repo.EnsureFloor(ctx, domain.NumberKindPurchaseOrder, n-100))

	next, err := repo.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
	require.NoError(t, err)
	assert.Equal(t, n+1, next)
}
