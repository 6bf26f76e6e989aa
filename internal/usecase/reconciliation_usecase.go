package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/crestline-media/fulfillment-service/internal/domain"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/metrics"
	"github.com/crestline-media/fulfillment-service/internal/infrastructure/refund"
)

type SweepReport struct {
	Candidates int `json:"candidates"`
	Refunded   int `json:"refunded"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

type ReconciliationUsecase interface {
	RunSweep(ctx context.Context) (*SweepReport, error)
}

// DefaultReconciliationUsecase resolves stale email-confirmation holds by
// refunding them. It is safe to run on a cadence and on demand at the
// same time: the selection predicate plus the conditional release update
// make overlapping sweeps converge on one refund per order.
type DefaultReconciliationUsecase struct {
	OrderRepo   domain.OrderRepository
	Refunds     refund.Connector
	Recorder    *Recorder
	Metrics     *metrics.FulfillmentMetrics
	HoldTimeout time.Duration
	BatchSize   int
	CallTimeout time.Duration
}

func NewDefaultReconciliationUsecase(
	orderRepo domain.OrderRepository,
	refunds refund.Connector,
	recorder *Recorder,
	m *metrics.FulfillmentMetrics,
	holdTimeout time.Duration,
	batchSize int,
) *DefaultReconciliationUsecase {
	return &DefaultReconciliationUsecase{
		OrderRepo:   orderRepo,
		Refunds:     refunds,
		Recorder:    recorder,
		Metrics:     m,
		HoldTimeout: holdTimeout,
		BatchSize:   batchSize,
		CallTimeout: 15 * time.Second,
	}
}

func (uc *DefaultReconciliationUsecase) RunSweep(ctx context.Context) (*SweepReport, error) {
	started := time.Now()
	cutoff := started.Add(-uc.HoldTimeout)

	candidates, err := uc.OrderRepo.FindStaleConfirmationHolds(ctx, cutoff, uc.BatchSize)
	if err != nil {
		return nil, err
	}

	report := &SweepReport{Candidates: len(candidates)}
	for _, order := range candidates {
		switch uc.resolve(ctx, order) {
		case resolved:
			report.Refunded++
		case failed:
			report.Failed++
		case skipped:
			report.Skipped++
		}
	}

	if uc.Metrics != nil {
		uc.Metrics.SweepDuration.WithLabelValues().Observe(time.Since(started).Seconds())
	}
	slog.Info("reconciliation sweep finished",
		"candidates", report.Candidates, "refunded", report.Refunded,
		"failed", report.Failed, "skipped", report.Skipped)
	return report, nil
}

type sweepOutcome int

const (
	resolved sweepOutcome = iota
	failed
	skipped
)

// resolve handles one candidate. A failure is recorded and retried next
// cycle; it never aborts the batch.
func (uc *DefaultReconciliationUsecase) resolve(ctx context.Context, order *domain.Order) sweepOutcome {
	if order.ProviderTxnID == "" {
		// Completed without a settled transaction id should not happen;
		// leave it for an operator rather than guess a refund target.
		uc.Recorder.Anomaly(ctx, uc.Recorder.Audits, order, "stale_hold_without_txn", nil)
		return skipped
	}

	if uc.Metrics != nil {
		uc.Metrics.RefundsAttemptedTotal.WithLabelValues(string(order.Provider)).Inc()
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.CallTimeout)
	err := uc.Refunds.Refund(callCtx, order.Provider, order.ProviderTxnID, order.AmountMinor, order.Currency)
	cancel()
	if err != nil {
		if uc.Metrics != nil {
			uc.Metrics.RefundsFailedTotal.WithLabelValues(string(order.Provider)).Inc()
		}
		slog.Error("sweep refund failed, will retry next cycle",
			"order_id", order.ID, "provider", order.Provider, "error", err.Error())
		return failed
	}

	if err := uc.OrderRepo.ReleaseHold(ctx, order.ID, domain.HoldReasonAutoRefund, domain.StatusRefunded); err != nil {
		if errors.Is(err, domain.ErrAlreadyReleased) {
			// An overlapping sweep or an operator resolved it first.
			return skipped
		}
		slog.Error("sweep hold release failed", "order_id", order.ID, "error", err.Error())
		return failed
	}

	uc.Recorder.Emit(ctx, order, domain.AuditFulfillmentReleased, map[string]string{"reason": domain.HoldReasonAutoRefund})
	uc.Recorder.Emit(ctx, order, domain.AuditOrderRefunded, map[string]string{"reason": domain.HoldReasonAutoRefund})
	if uc.Metrics != nil {
		uc.Metrics.HoldsReleasedTotal.WithLabelValues(domain.HoldReasonAutoRefund).Inc()
	}
	return resolved
}
