package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/meridian-steel/shop-api/internal/domain"
)

// NewTestDB opens an isolated in-memory sqlite database with the full schema
// migrated. Each call gets its own database; a single connection is kept so
// the shared-cache memory store survives for the test's lifetime.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.Estimate{},
		&domain.Part{},
		&domain.LaborMinimumRule{},
		&domain.WorkOrder{},
		&domain.WorkOrderPart{},
		&domain.PurchaseOrder{},
		&domain.SequenceCounter{},
		&domain.NumberIssuance{},
		&domain.File{},
		&domain.User{},
	))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
