package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/meridian-steel/shop-api/internal/domain"
)

// NumberSyncJobName is the name of the legacy number reconciliation job
const NumberSyncJobName = "legacy_number_sync"

// LegacyNumberSource reads the highest reference numbers the retired shop
// system handed out. Satisfied by the legacy client; an interface so the job
// doesn't import the legacy package directly.
type LegacyNumberSource interface {
	IsEnabled() bool
	MaxIssuedNumber(ctx context.Context, kind domain.NumberKind) (int, error)
}

// CounterFloorSetter raises a sequence counter so it never collides with a
// number observed elsewhere. Satisfied by the sequence repository.
type CounterFloorSetter interface {
	EnsureFloor(ctx context.Context, kind domain.NumberKind, value int) error
}

// NumberSyncJob reconciles our sequence counters against the legacy system's
// tables. Paperwork occasionally gets entered into the old system during the
// transition; this keeps the new sequences ahead of it.
type NumberSyncJob struct {
	source  LegacyNumberSource
	counter CounterFloorSetter
	logger  *zap.Logger
	timeout time.Duration
}

// NewNumberSyncJob creates a new legacy number reconciliation job.
func NewNumberSyncJob(source LegacyNumberSource, counter CounterFloorSetter, logger *zap.Logger, timeout time.Duration) *NumberSyncJob {
	return &NumberSyncJob{
		source:  source,
		counter: counter,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes the reconciliation. Called by the scheduler.
func (j *NumberSyncJob) Run() {
	if j.source == nil || !j.source.IsEnabled() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting legacy number reconciliation")

	for _, kind := range []domain.NumberKind{
		domain.NumberKindPurchaseOrder,
		domain.NumberKindDeliveryReceipt,
	} {
		max, err := j.source.MaxIssuedNumber(ctx, kind)
		if err != nil {
			j.logger.Error("failed to read legacy max number",
				zap.String("kind", string(kind)),
				zap.Error(err))
			continue
		}
		if max == 0 {
			continue
		}
		if err := j.counter.EnsureFloor(ctx, kind, max); err != nil {
			j.logger.Error("failed to raise sequence counter",
				zap.String("kind", string(kind)),
				zap.Int("legacy_max", max),
				zap.Error(err))
			continue
		}
		j.logger.Info("reconciled sequence against legacy system",
			zap.String("kind", string(kind)),
			zap.Int("legacy_max", max))
	}

	j.logger.Info("legacy number reconciliation completed",
		zap.Duration("duration", time.Since(start)))
}

// RegisterNumberSyncJob registers the reconciliation job with the scheduler.
// runImmediately also kicks off one pass in the background so a stale counter
// is corrected at startup rather than at 3am.
func RegisterNumberSyncJob(scheduler *Scheduler, source LegacyNumberSource, counter CounterFloorSetter, logger *zap.Logger, cronExpr string, timeout time.Duration, runImmediately bool) error {
	job := NewNumberSyncJob(source, counter, logger, timeout)

	if runImmediately {
		go job.Run()
	}

	return scheduler.AddJob(NumberSyncJobName, cronExpr, job.Run)
}
