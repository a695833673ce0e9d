package models

import (
	"context"

	"github.com/Temutjin2k/kekelink/internal/domain/types"
)

// User is the caller of an HTTP endpoint, as established by the access token.
type User struct {
	ID   int64          `json:"id"`
	Name string         `json:"name"`
	Role types.UserRole `json:"role"`
}

var anonymous = &User{}

func AnonymousUser() *User {
	return anonymous
}

func (u *User) IsAnonymous() bool {
	return u == anonymous
}

type userCtxKey struct{}

func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the user stored by the auth middleware, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}
