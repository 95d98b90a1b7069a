// Package actorctx carries the authenticated caller on a context.Context so
// code below the HTTP layer (logging, stores) can see who is acting.
package actorctx

import "context"

type ctxKey string

const keyUserID ctxKey = "user_id"

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, keyUserID, userID)
}

func UserIDFrom(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(keyUserID).(int64)

	return v, ok && v != 0
}
