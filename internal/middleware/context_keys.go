package middleware

import "context"

// callerIDKey is the key used to store the caller's owner ID in the request
// context.
const callerIDKey = contextKey("callerID")

// GetCallerIDFromCtx retrieves the caller identity from the context.
// It returns the caller ID and a boolean indicating if it was found.
func GetCallerIDFromCtx(ctx context.Context) (string, bool) {
	callerID, ok := ctx.Value(callerIDKey).(string)
	if !ok || callerID == "" {
		return "", false
	}
	return callerID, true
}

// WithCallerID returns a context carrying the caller identity. Exposed for
// tests and internal callers that bypass the HTTP layer.
func WithCallerID(ctx context.Context, callerID string) context.Context {
	return context.WithValue(ctx, callerIDKey, callerID)
}
