package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics holds the sync-engine metric instruments. A nil *SyncMetrics
// is safe to use; every method is a no-op on it so tests can skip wiring.
type SyncMetrics struct {
	cyclesTotal      metric.Int64Counter
	cycleDuration    metric.Float64Histogram
	vehiclesSynced   metric.Int64Counter
	authFailures     metric.Int64Counter
	alertsFired      metric.Int64Counter
	alertsSuppressed metric.Int64Counter
	dispatchFailures metric.Int64Counter
}

// NewSyncMetrics creates the sync metric instruments
func NewSyncMetrics() (*SyncMetrics, error) {
	meter := otel.Meter(instrumentationName)

	cyclesTotal, err := meter.Int64Counter(
		"sync.cycles.total",
		metric.WithDescription("Total number of completed sync cycles"),
		metric.WithUnit("{cycles}"),
	)
	if err != nil {
		return nil, err
	}

	cycleDuration, err := meter.Float64Histogram(
		"sync.cycle.duration",
		metric.WithDescription("Sync cycle duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	vehiclesSynced, err := meter.Int64Counter(
		"sync.vehicles.synced",
		metric.WithDescription("Total number of vehicle usage updates"),
		metric.WithUnit("{vehicles}"),
	)
	if err != nil {
		return nil, err
	}

	authFailures, err := meter.Int64Counter(
		"sync.auth.failures",
		metric.WithDescription("Total number of provider authentication failures"),
		metric.WithUnit("{failures}"),
	)
	if err != nil {
		return nil, err
	}

	alertsFired, err := meter.Int64Counter(
		"alerts.fired",
		metric.WithDescription("Total number of maintenance alerts dispatched"),
		metric.WithUnit("{alerts}"),
	)
	if err != nil {
		return nil, err
	}

	alertsSuppressed, err := meter.Int64Counter(
		"alerts.suppressed",
		metric.WithDescription("Total number of alerts suppressed by cooldown"),
		metric.WithUnit("{alerts}"),
	)
	if err != nil {
		return nil, err
	}

	dispatchFailures, err := meter.Int64Counter(
		"alerts.dispatch.failures",
		metric.WithDescription("Total number of failed alert email deliveries"),
		metric.WithUnit("{failures}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		cyclesTotal:      cyclesTotal,
		cycleDuration:    cycleDuration,
		vehiclesSynced:   vehiclesSynced,
		authFailures:     authFailures,
		alertsFired:      alertsFired,
		alertsSuppressed: alertsSuppressed,
		dispatchFailures: dispatchFailures,
	}, nil
}

// RecordCycle records one completed cycle and its duration.
func (m *SyncMetrics) RecordCycle(ctx context.Context, durationMS float64, ok bool) {
	if m == nil {
		return
	}
	m.cyclesTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cycle.ok", ok)))
	m.cycleDuration.Record(ctx, durationMS)
}

// RecordVehiclesSynced counts vehicle usage updates in a cycle.
func (m *SyncMetrics) RecordVehiclesSynced(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.vehiclesSynced.Add(ctx, int64(n))
}

// RecordAuthFailure counts a provider authentication failure.
func (m *SyncMetrics) RecordAuthFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.authFailures.Add(ctx, 1)
}

// RecordAlertFired counts a dispatched alert.
func (m *SyncMetrics) RecordAlertFired(ctx context.Context) {
	if m == nil {
		return
	}
	m.alertsFired.Add(ctx, 1)
}

// RecordAlertSuppressed counts a cooldown suppression.
func (m *SyncMetrics) RecordAlertSuppressed(ctx context.Context) {
	if m == nil {
		return
	}
	m.alertsSuppressed.Add(ctx, 1)
}

// RecordDispatchFailure counts a failed email delivery.
func (m *SyncMetrics) RecordDispatchFailure(ctx context.Context) {
	if m == nil {
		return
	}
	m.dispatchFailures.Add(ctx, 1)
}
