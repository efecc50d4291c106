// Package reqctx carries request-scoped values on context.Context: the
// request metadata set by the request-id middleware and the verified
// claims set by the auth middleware. Services read them through the
// getters here, and LogAttrs turns them into slog attributes.
package reqctx
