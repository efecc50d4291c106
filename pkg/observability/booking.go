package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BookingMetrics counts booking decisions and sweep results. It uses the
// global meter, so it is a no-op until InitTelemetry has run.
type BookingMetrics struct {
	outcomes  metric.Int64Counter
	completed metric.Int64Counter
}

func NewBookingMetrics() *BookingMetrics {
	meter := otel.Meter(tracerName)

	outcomes, _ := meter.Int64Counter(
		"booking_decisions_total",
		metric.WithDescription("Booking attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	completed, _ := meter.Int64Counter(
		"appointments_auto_completed_total",
		metric.WithDescription("Appointments moved to completed by the sweep"),
		metric.WithUnit("{appointment}"),
	)

	return &BookingMetrics{outcomes: outcomes, completed: completed}
}

// RecordOutcome records "accepted" or the rejection reason.
func (m *BookingMetrics) RecordOutcome(ctx context.Context, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *BookingMetrics) RecordCompleted(ctx context.Context, n int64) {
	if m == nil || m.completed == nil || n <= 0 {
		return
	}
	m.completed.Add(ctx, n)
}
