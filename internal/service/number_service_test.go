package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/repository"
	"github.com/meridian-steel/shop-api/internal/testutil"
)

func newNumberService(t *testing.T) *NumberService {
	db := testutil.NewTestDB(t)
	sequenceRepo := repository.NewSequenceRepository(db, map[domain.NumberKind]int{
		domain.NumberKindPurchaseOrder:   7500,
		domain.NumberKindDeliveryReceipt: 2950,
	})
	return NewNumberService(sequenceRepo, zap.NewNop())
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "PO7766", FormatNumber(domain.NumberKindPurchaseOrder, 7766))
	assert.Equal(t, "DR-2956", FormatNumber(domain.NumberKindDeliveryReceipt, 2956))
}

func TestNumberServiceRejectsUnknownKind(t *testing.T) {
	svc := newNumberService(t)
	ctx := context.Background()

	_, err := svc.Allocate(ctx, domain.NumberKind("invoice"), "tester")
	assert.ErrorIs(t, err, ErrInvalidNumberKind)

	err = svc.Reserve(ctx, domain.NumberKind("invoice"), 1, "tester")
	assert.ErrorIs(t, err, ErrInvalidNumberKind)

	err = svc.Void(ctx, domain.NumberKind("invoice"), 1, "reason")
	assert.ErrorIs(t, err, ErrInvalidNumberKind)
}

func TestNumberServiceVoidRequiresReason(t *testing.T) {
	svc := newNumberService(t)
	ctx := context.Background()

	n, err := svc.Allocate(ctx, domain.NumberKindDeliveryReceipt, "tester")
	require.NoError(t, err)

	err = svc.Void(ctx, domain.NumberKindDeliveryReceipt, n, "  ")
	assert.ErrorIs(t, err, ErrVoidReasonRequired)

	require.NoError(t, svc.Void(ctx, domain.NumberKindDeliveryReceipt, n, "misprint"))

	issuance, err := svc.Get(ctx, domain.NumberKindDeliveryReceipt, n)
	require.NoError(t, err)
	assert.Equal(t, domain.IssuanceStatusVoid, issuance.Status)
}

func TestNumberServiceListRecent(t *testing.T) {
	svc := newNumberService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Allocate(ctx, domain.NumberKindPurchaseOrder, "tester")
		require.NoError(t, err)
	}

	issuances, err := svc.List(ctx, domain.NumberKindPurchaseOrder, 3)
	require.NoError(t, err)
	require.Len(t, issuances, 3)
	assert.Equal(t, 7505, issuances[0].Number, "newest first")
}
