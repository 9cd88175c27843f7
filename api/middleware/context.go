package middleware

import "context"

type accessIDKey struct{}

// AccessIDFromContext returns the session id Authenticate attached, or "".
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(accessIDKey{}).(string)
	return id
}

func withAccessID(ctx context.Context, accessID string) context.Context {
	if accessID == "" {
		return ctx
	}
	return context.WithValue(ctx, accessIDKey{}, accessID)
}
