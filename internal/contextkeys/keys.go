package contextkeys

import (
	"context"

	"github.com/AndriyMV/task-manager-bot/types"
)

type userKey struct{}
type requestIDKey struct{}

func WithUser(ctx context.Context, user *types.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func GetUser(ctx context.Context) (*types.User, bool) {
	v := ctx.Value(userKey{})
	if v == nil {
		return nil, false
	}
	return v.(*types.User), true
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func GetRequestID(ctx context.Context) (string, bool) {
	v := ctx.Value(requestIDKey{})
	if v == nil {
		return "", false
	}
	return v.(string), true
}
