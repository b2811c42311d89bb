// Package requestctx stamps calls into the execution pipeline with an
// ambient request context: an identifier, a caller-identity placeholder,
// and a start time. It is consumed only for logging and monitoring; the
// pipeline itself never branches on it.
package requestctx

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultCaller is the caller-identity placeholder used until a real
// identity layer stamps requests.
const DefaultCaller = "anonymous"

// RequestContext identifies one call for diagnostics.
type RequestContext struct {
	RequestID string
	Caller    string
	StartTime time.Time
}

// New creates a request context with a fresh ULID and the placeholder
// caller identity.
func New() RequestContext {
	return RequestContext{
		RequestID: ulid.Make().String(),
		Caller:    DefaultCaller,
		StartTime: time.Now(),
	}
}

type contextKey struct{}

// With returns a context carrying the request context.
func With(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// From returns the request context carried by ctx, or a fresh one if the
// caller did not stamp the request.
func From(ctx context.Context) RequestContext {
	if ctx != nil {
		if rc, ok := ctx.Value(contextKey{}).(RequestContext); ok {
			return rc
		}
	}
	return New()
}
