package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/takiras/storefront/api/web"
	"github.com/takiras/storefront/api/weberr"
	"github.com/takiras/storefront/core/claims"
)

// LoadAndSave adapts the session manager's cookie handling to the
// handler chain. It must run before any middleware that touches the
// session.
func LoadAndSave(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error
			sh := session.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			}))
			sh.ServeHTTP(w, r)
			return err
		}
		return h
	}
	return m
}

// Authenticate rejects requests whose session is not bound to a user and
// stores the subject's claims in the context for downstream handlers.
func Authenticate(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			userID := session.GetString(ctx, sessionUserKey)
			if userID == "" {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			roles, _ := session.Get(ctx, sessionRolesKey).([]string)
			ctx = claims.Set(ctx, claims.Claims{UserID: userID, Roles: roles})
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Admin allows only authenticated sessions carrying the admin role.
func Admin(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			userID := session.GetString(ctx, sessionUserKey)
			if userID == "" {
				return weberr.NotAuthorized(errors.New("user not authenticated"))
			}

			roles, _ := session.Get(ctx, sessionRolesKey).([]string)
			ctx = claims.Set(ctx, claims.Claims{UserID: userID, Roles: roles})

			if !claims.IsAdmin(ctx) {
				return weberr.NotAuthorized(errors.New("user is not an admin"))
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
