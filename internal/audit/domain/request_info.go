package domain

import "context"

// requestInfoKey is the context key for RequestInfo.
type requestInfoKey struct{}

// RequestInfo identifies who issued a request and how.
type RequestInfo struct {
	RequestID string
	Actor     string
	Path      string
	Method    string
}

// WithRequestInfo stores info in the context.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

// GetRequestInfo returns the RequestInfo stored in ctx, or the zero value.
func GetRequestInfo(ctx context.Context) (RequestInfo, bool) {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info, ok
}
