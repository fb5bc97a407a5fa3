package claims

import (
	"context"
	"errors"
)

const RoleAdmin = "admin"

// Claims identifies the auth subject a request acts as. Roles come
// straight from the upstream user record.
type Claims struct {
	UserID string
	Roles  []string
}

type ctxKey int

const claimsKey ctxKey = 1

func Set(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Get(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		return Claims{}, errors.New("claim value missing from context")
	}
	return v, nil
}

func HasRole(ctx context.Context, role string) bool {
	c, err := Get(ctx)
	if err != nil {
		return false
	}

	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func IsAdmin(ctx context.Context) bool {
	return HasRole(ctx, RoleAdmin)
}
