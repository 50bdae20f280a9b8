// Package requestcontext carries per-request metadata through contexts.
package requestcontext

import "context"

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyClientIP
	keyUserAgent
	keyDeviceLabel
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// RequestID returns the request ID, or "" outside a request.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(keyRequestID).(string)
	return v
}

// WithClientMetadata stores the client IP and raw User-Agent.
func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, keyClientIP, ip)
	return context.WithValue(ctx, keyUserAgent, userAgent)
}

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(keyClientIP).(string)
	return v
}

func UserAgent(ctx context.Context) string {
	v, _ := ctx.Value(keyUserAgent).(string)
	return v
}

// WithDeviceLabel stores a display label such as "Chrome on macOS".
func WithDeviceLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, keyDeviceLabel, label)
}

func DeviceLabel(ctx context.Context) string {
	v, _ := ctx.Value(keyDeviceLabel).(string)
	return v
}
