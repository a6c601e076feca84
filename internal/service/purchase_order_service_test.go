package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/repository"
	"github.com/meridian-steel/shop-api/internal/testutil"
)

func newPurchaseOrderFixture(t *testing.T) (*PurchaseOrderService, *gorm.DB) {
	db := testutil.NewTestDB(t)
	poRepo := repository.NewPurchaseOrderRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db, map[domain.NumberKind]int{
		domain.NumberKindPurchaseOrder:   7500,
		domain.NumberKindDeliveryReceipt: 2950,
	})
	return NewPurchaseOrderService(db, poRepo, sequenceRepo, zap.NewNop()), db
}

func TestCreateAllocatesSequentialNumbers(t *testing.T) {
	svc, _ := newPurchaseOrderFixture(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
		Cost:   1250,
	}, "user-1")
	require.NoError(t, err)
	require.NotNil(t, first.PONumber)
	assert.Equal(t, 7501, *first.PONumber)
	assert.Equal(t, domain.PurchaseOrderStatusOpen, first.Status)

	second, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
	}, "user-1")
	require.NoError(t, err)
	require.NotNil(t, second.PONumber)
	assert.Equal(t, 7502, *second.PONumber)
}

func TestCreateWithCustomNumberReserves(t *testing.T) {
	svc, _ := newPurchaseOrderFixture(t)
	ctx := context.Background()

	// Initialize the counter with a normal allocation first; a cold-start
	// seed would otherwise chase the reserved number.
	first, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7501, *first.PONumber)

	custom := 9000
	po, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor:       "Steel Supply Co",
		CustomNumber: &custom,
	}, "user-1")
	require.NoError(t, err)
	require.NotNil(t, po.PONumber)
	assert.Equal(t, 9000, *po.PONumber)

	// Reserving out of sequence must not move the counter.
	next, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
	}, "user-1")
	require.NoError(t, err)
	require.NotNil(t, next.PONumber)
	assert.Equal(t, 7502, *next.PONumber)
}

func TestCreateDuplicateCustomNumberRejected(t *testing.T) {
	svc, db := newPurchaseOrderFixture(t)
	ctx := context.Background()

	custom := 9000
	_, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor:       "Steel Supply Co",
		CustomNumber: &custom,
	}, "user-1")
	require.NoError(t, err)

	_, err = svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor:       "Other Vendor",
		CustomNumber: &custom,
	}, "user-1")
	assert.ErrorIs(t, err, repository.ErrDuplicateNumber)

	// The rejected order must not exist: the reserve and the row share one
	// transaction.
	var count int64
	require.NoError(t, db.Model(&domain.PurchaseOrder{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestVoidRequiresReason(t *testing.T) {
	svc, _ := newPurchaseOrderFixture(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
	}, "user-1")
	require.NoError(t, err)

	_, err = svc.VoidNumber(ctx, po.ID, "")
	assert.ErrorIs(t, err, ErrVoidReasonRequired)

	_, err = svc.VoidNumber(ctx, po.ID, "   ")
	assert.ErrorIs(t, err, ErrVoidReasonRequired)
}

func TestVoidKeepsNumberConsumed(t *testing.T) {
	svc, db := newPurchaseOrderFixture(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
	}, "user-1")
	require.NoError(t, err)
	number := *po.PONumber

	po, err = svc.VoidNumber(ctx, po.ID, "ordered in error")
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderStatusVoid, po.Status)
	require.NotNil(t, po.PONumber)
	assert.Equal(t, number, *po.PONumber, "voided order keeps its number on file")

	var issuance domain.NumberIssuance
	require.NoError(t, db.First(&issuance,
		"kind = ? AND number = ?", domain.NumberKindPurchaseOrder, number).Error)
	assert.Equal(t, domain.IssuanceStatusVoid, issuance.Status)
	assert.Equal(t, "ordered in error", issuance.VoidReason)

	// The next allocation moves past the voided number.
	next, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, number+1, *next.PONumber)
}

func TestVoidNumberRollsBackAsOne(t *testing.T) {
	svc, db := newPurchaseOrderFixture(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
	}, "user-1")
	require.NoError(t, err)
	number := *po.PONumber

	// Break the order update so the transaction fails after the void.
	require.NoError(t, db.Migrator().DropColumn(&domain.PurchaseOrder{}, "Notes"))

	_, err = svc.VoidNumber(ctx, po.ID, "ordered in error")
	require.Error(t, err)

	var issuance domain.NumberIssuance
	require.NoError(t, db.First(&issuance,
		"kind = ? AND number = ?", domain.NumberKindPurchaseOrder, number).Error)
	assert.Equal(t, domain.IssuanceStatusActive, issuance.Status,
		"issuance void rolled back with the failed order update")
}

func TestReleaseNumberRollsBackAsOne(t *testing.T) {
	svc, db := newPurchaseOrderFixture(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
	}, "user-1")
	require.NoError(t, err)
	number := *po.PONumber

	require.NoError(t, db.Migrator().DropColumn(&domain.PurchaseOrder{}, "Notes"))

	_, err = svc.ReleaseNumber(ctx, po.ID)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.NumberIssuance{}).
		Where("kind = ? AND number = ?", domain.NumberKindPurchaseOrder, number).
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "issuance survives the rolled-back release")
}

func TestReleaseClearsNumber(t *testing.T) {
	svc, db := newPurchaseOrderFixture(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
	}, "user-1")
	require.NoError(t, err)
	number := *po.PONumber

	po, err = svc.ReleaseNumber(ctx, po.ID)
	require.NoError(t, err)
	assert.Nil(t, po.PONumber)

	var count int64
	require.NoError(t, db.Model(&domain.NumberIssuance{}).
		Where("kind = ? AND number = ?", domain.NumberKindPurchaseOrder, number).
		Count(&count).Error)
	assert.Zero(t, count, "issuance deleted")

	// Released numbers can be taken again as a custom number.
	reused, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor:       "Other Vendor",
		CustomNumber: &number,
	}, "user-1")
	require.NoError(t, err)
	assert.Equal(t, number, *reused.PONumber)
}

func TestReleaseWithoutNumber(t *testing.T) {
	svc, _ := newPurchaseOrderFixture(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
	}, "user-1")
	require.NoError(t, err)

	_, err = svc.ReleaseNumber(ctx, po.ID)
	require.NoError(t, err)

	_, err = svc.ReleaseNumber(ctx, po.ID)
	assert.ErrorIs(t, err, repository.ErrNumberNotFound)
}

func TestMarkReceived(t *testing.T) {
	svc, _ := newPurchaseOrderFixture(t)
	ctx := context.Background()

	po, err := svc.Create(ctx, &domain.CreatePurchaseOrderRequest{
		Vendor: "Steel Supply Co",
	}, "user-1")
	require.NoError(t, err)

	po, err = svc.MarkReceived(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseOrderStatusReceived, po.Status)
}
