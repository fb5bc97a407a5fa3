package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/takiras/storefront/api/web"
	"github.com/takiras/storefront/api/weberr"
	"github.com/takiras/storefront/rate"
)

// RateLimit throttles each remote client independently.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !lim.Check(host) {
				return weberr.NewError(
					errors.New("client exceeded the request rate"),
					"too many requests",
					http.StatusTooManyRequests,
				)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
