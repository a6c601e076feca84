package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/repository"
	"github.com/meridian-steel/shop-api/internal/testutil"
)

func newWorkOrderFixture(t *testing.T) (*WorkOrderService, *EstimateService, *gorm.DB) {
	db := testutil.NewTestDB(t)
	estimateRepo := repository.NewEstimateRepository(db)
	workOrderRepo := repository.NewWorkOrderRepository(db)
	ruleRepo := repository.NewLaborRuleRepository(db)
	sequenceRepo := repository.NewSequenceRepository(db, map[domain.NumberKind]int{
		domain.NumberKindPurchaseOrder:   7500,
		domain.NumberKindDeliveryReceipt: 2950,
	})
	require.NoError(t, NewLaborRuleService(ruleRepo, zap.NewNop()).SeedDefaults(context.Background()))

	estSvc := NewEstimateService(estimateRepo, ruleRepo, nil, zap.NewNop())
	woSvc := NewWorkOrderService(db, workOrderRepo, estimateRepo, sequenceRepo, zap.NewNop())
	return woSvc, estSvc, db
}

// convertibleEstimate builds an estimate with one priced part and an attached
// drawing, ready to convert.
func convertibleEstimate(t *testing.T, estSvc *EstimateService, db *gorm.DB) *domain.Estimate {
	ctx := context.Background()

	est, err := estSvc.Create(ctx, &domain.CreateEstimateRequest{
		CustomerName: "Acme Tanks",
		TaxRate:      8,
	}, "user-1", "Test User")
	require.NoError(t, err)

	est, err = estSvc.AddPart(ctx, est.ID, &domain.PartRequest{
		PartType:         domain.PartTypeFabrication,
		Quantity:         2,
		Description:      "rolled shell",
		MaterialSource:   domain.MaterialSourceShop,
		MaterialUnitCost: 100,
	})
	require.NoError(t, err)

	require.NoError(t, db.Create(&domain.File{
		Filename:    "shell.pdf",
		ContentType: "application/pdf",
		Size:        1024,
		StoragePath: "estimates/" + est.ID.String() + "/shell.pdf",
		EstimateID:  &est.ID,
	}).Error)

	return est
}

func TestConvertEstimate(t *testing.T) {
	woSvc, estSvc, db := newWorkOrderFixture(t)
	ctx := context.Background()

	est := convertibleEstimate(t, estSvc, db)

	wo, err := woSvc.ConvertEstimate(ctx, est.ID, &domain.ConvertEstimateRequest{
		Notes: "rush job",
	}, "user-1")
	require.NoError(t, err)

	require.NotNil(t, wo.DRNumber)
	assert.Equal(t, 2951, *wo.DRNumber)
	assert.Equal(t, domain.WorkOrderStatusOpen, wo.Status)
	assert.Equal(t, "Acme Tanks", wo.CustomerName)
	assert.Equal(t, "rush job", wo.Notes)

	// Pricing copied verbatim from the estimate.
	assert.Equal(t, est.PartsSubtotal, wo.PartsSubtotal)
	assert.Equal(t, est.TaxAmount, wo.TaxAmount)
	assert.Equal(t, est.GrandTotal, wo.GrandTotal)

	require.Len(t, wo.Parts, 1)
	assert.Equal(t, est.Parts[0].ID, wo.Parts[0].SourceID)
	assert.Equal(t, est.Parts[0].PartNumber, wo.Parts[0].PartNumber)
	assert.Equal(t, est.Parts[0].PartTotal, wo.Parts[0].PartTotal)
	assert.Equal(t, "rolled shell", wo.Parts[0].Description)

	// Drawings follow the job.
	var file domain.File
	require.NoError(t, db.First(&file, "estimate_id = ?", est.ID).Error)
	require.NotNil(t, file.WorkOrderID)
	assert.Equal(t, wo.ID, *file.WorkOrderID)

	reloaded, err := estSvc.GetByID(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EstimateStatusConverted, reloaded.Status)
	require.NotNil(t, reloaded.WorkOrderID)
	assert.Equal(t, wo.ID, *reloaded.WorkOrderID)
}

func TestConvertEstimateTwiceRejected(t *testing.T) {
	woSvc, estSvc, db := newWorkOrderFixture(t)
	ctx := context.Background()

	est := convertibleEstimate(t, estSvc, db)

	_, err := woSvc.ConvertEstimate(ctx, est.ID, &domain.ConvertEstimateRequest{}, "user-1")
	require.NoError(t, err)

	_, err = woSvc.ConvertEstimate(ctx, est.ID, &domain.ConvertEstimateRequest{}, "user-1")
	assert.ErrorIs(t, err, ErrEstimateConverted)
}

func TestConvertEstimateNotFound(t *testing.T) {
	woSvc, _, _ := newWorkOrderFixture(t)

	_, err := woSvc.ConvertEstimate(context.Background(), uuid.New(), &domain.ConvertEstimateRequest{}, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConvertEstimateRollsBackAsOne(t *testing.T) {
	woSvc, estSvc, db := newWorkOrderFixture(t)
	ctx := context.Background()

	est := convertibleEstimate(t, estSvc, db)

	// Break the part-copy step so the transaction fails midway.
	require.NoError(t, db.Migrator().DropTable(&domain.WorkOrderPart{}))

	_, err := woSvc.ConvertEstimate(ctx, est.ID, &domain.ConvertEstimateRequest{}, "user-1")
	require.Error(t, err)

	reloaded, err := estSvc.GetByID(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EstimateStatusDraft, reloaded.Status, "estimate left unconverted")
	assert.Nil(t, reloaded.WorkOrderID)

	var woCount int64
	require.NoError(t, db.Model(&domain.WorkOrder{}).Count(&woCount).Error)
	assert.Zero(t, woCount)

	var issuanceCount int64
	require.NoError(t, db.Model(&domain.NumberIssuance{}).Count(&issuanceCount).Error)
	assert.Zero(t, issuanceCount, "no DR number consumed by the failed conversion")
}

func TestGetByDRNumber(t *testing.T) {
	woSvc, estSvc, db := newWorkOrderFixture(t)
	ctx := context.Background()

	est := convertibleEstimate(t, estSvc, db)
	wo, err := woSvc.ConvertEstimate(ctx, est.ID, &domain.ConvertEstimateRequest{}, "user-1")
	require.NoError(t, err)

	found, err := woSvc.GetByDRNumber(ctx, *wo.DRNumber)
	require.NoError(t, err)
	assert.Equal(t, wo.ID, found.ID)

	_, err = woSvc.GetByDRNumber(ctx, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWorkOrderSetStatus(t *testing.T) {
	woSvc, estSvc, db := newWorkOrderFixture(t)
	ctx := context.Background()

	est := convertibleEstimate(t, estSvc, db)
	wo, err := woSvc.ConvertEstimate(ctx, est.ID, &domain.ConvertEstimateRequest{}, "user-1")
	require.NoError(t, err)

	wo, err = woSvc.SetStatus(ctx, wo.ID, domain.WorkOrderStatusInShop)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkOrderStatusInShop, wo.Status)

	_, err = woSvc.SetStatus(ctx, wo.ID, domain.WorkOrderStatus("bogus"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
