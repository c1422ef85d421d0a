package reqinfo

import "context"

type contextKey string

const (
	ipKey        contextKey = "request_ip"
	userAgentKey contextKey = "request_user_agent"
)

// WithRequestInfo stores the caller's network metadata for audit logging.
func WithRequestInfo(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, ipKey, ip)
	return context.WithValue(ctx, userAgentKey, userAgent)
}

// IPAddress returns the request IP recorded by the middleware, if any.
func IPAddress(ctx context.Context) *string {
	if v, ok := ctx.Value(ipKey).(string); ok && v != "" {
		return &v
	}
	return nil
}

// UserAgent returns the request user agent recorded by the middleware, if any.
func UserAgent(ctx context.Context) *string {
	if v, ok := ctx.Value(userAgentKey).(string); ok && v != "" {
		return &v
	}
	return nil
}
