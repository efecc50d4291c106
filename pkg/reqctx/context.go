package reqctx

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const (
	keyRequestMeta ctxKey = iota
	keyClaims
)

// RequestMeta is set once per request by the request-id middleware.
type RequestMeta struct {
	RequestID string
	ClientIP  string
}

func WithRequestMeta(ctx context.Context, meta *RequestMeta) context.Context {
	return context.WithValue(ctx, keyRequestMeta, meta)
}

func RequestMetaFromContext(ctx context.Context) (*RequestMeta, bool) {
	meta, ok := ctx.Value(keyRequestMeta).(*RequestMeta)
	return meta, ok && meta != nil
}

// LogAttrs returns slog key/value pairs identifying the request in ctx:
// request_id, client_ip, trace_id and user_id, each only when known.
func LogAttrs(ctx context.Context) []any {
	var attrs []any
	if meta, ok := RequestMetaFromContext(ctx); ok {
		attrs = append(attrs, "request_id", meta.RequestID)
		if meta.ClientIP != "" {
			attrs = append(attrs, "client_ip", meta.ClientIP)
		}
	}
	if tid := TraceID(ctx); tid != "" {
		attrs = append(attrs, "trace_id", tid)
	}
	if uid, ok := UserIDFromContext(ctx); ok && uid != uuid.Nil {
		attrs = append(attrs, "user_id", uid.String())
	}
	return attrs
}
