package reqctx

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceID returns the OTel trace id of the active span, or "" when the
// request is not traced.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
