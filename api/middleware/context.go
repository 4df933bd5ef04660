package middleware

import "context"

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxRole      contextKey = "actor_role"
	ctxAccessID  contextKey = "access_id"
	ctxRequestID contextKey = "request_id"
)

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

func UserIDFromContext(ctx context.Context) string { return stringValue(ctx, ctxUserID) }

func RoleFromContext(ctx context.Context) string { return stringValue(ctx, ctxRole) }

// AccessIDFromContext returns the jti of the token that authenticated the request.
func AccessIDFromContext(ctx context.Context) string { return stringValue(ctx, ctxAccessID) }

// RequestIDFromContext returns the id assigned by RequestID, if any.
func RequestIDFromContext(ctx context.Context) string { return stringValue(ctx, ctxRequestID) }

// WithUserID injects the operator id, as the auth middleware would.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withString(ctx, ctxUserID, userID)
}

func WithRole(ctx context.Context, role string) context.Context {
	return withString(ctx, ctxRole, role)
}
