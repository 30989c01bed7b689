package common

import "context"

type ctxKey string

const userIDKey ctxKey = "material/actor-id"

// WithUserID stores the authenticated admin's user id (users.id) on ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID returns the id stored by WithUserID. Storefront requests are
// anonymous and report false.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
