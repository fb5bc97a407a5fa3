package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/sirupsen/logrus"
	"github.com/takiras/storefront/api/web"
	"github.com/takiras/storefront/api/weberr"
	"github.com/takiras/storefront/backend"
	"github.com/takiras/storefront/core/cart"
	"github.com/takiras/storefront/core/user"
	"github.com/takiras/storefront/store"
	"github.com/takiras/storefront/validate"
)

func HandleSignup(client *backend.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var su user.Signup
		if err := web.Decode(w, r, &su); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding signup payload: %w", err))
		}

		if fields := validate.CheckFields(&su); fields != nil {
			return weberr.Validation(errors.New("invalid signup payload"), fields)
		}

		usr, err := client.SignUp(ctx, su)
		if err != nil {
			return fmt.Errorf("creating account: %w", err)
		}

		return web.Respond(ctx, w, usr, http.StatusCreated)
	}
}

// HandleLogin exchanges credentials for an upstream session, persists the
// auth record on the device, binds the cookie session to the user and
// reconciles the local cart with the server's. The bootstrap runs here,
// when the auth subject changes, not on every request.
func HandleLogin(log logrus.FieldLogger, client *backend.Client, st *store.Store, session *scs.SessionManager) web.Handler {
	return login(log, client, st, session, false)
}

func HandleAdminLogin(log logrus.FieldLogger, client *backend.Client, st *store.Store, session *scs.SessionManager) web.Handler {
	return login(log, client, st, session, true)
}

func login(log logrus.FieldLogger, client *backend.Client, st *store.Store, session *scs.SessionManager, admin bool) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var lg user.Login
		if err := web.Decode(w, r, &lg); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding login payload: %w", err))
		}

		if fields := validate.CheckFields(&lg); fields != nil {
			return weberr.Validation(errors.New("invalid login payload"), fields)
		}

		var sess backend.Session
		var err error
		if admin {
			sess, err = client.AdminLogin(ctx, lg)
		} else {
			sess, err = client.Login(ctx, lg)
		}
		if err != nil {
			return weberr.NotAuthorized(fmt.Errorf("upstream login rejected: %w", err))
		}

		rec := Record{User: sess.User, Token: sess.Token}
		if err := st.Write(store.KeyAuth, rec); err != nil {
			return fmt.Errorf("persisting auth record: %w", err)
		}

		if err := session.RenewToken(ctx); err != nil {
			return fmt.Errorf("renewing session token: %w", err)
		}
		session.Put(ctx, sessionUserKey, sess.User.ID)
		session.Put(ctx, sessionRolesKey, sess.User.Roles)

		cart.Bootstrap(ctx, log, st, client, sess.Token, sess.User.ID)

		return web.Respond(ctx, w, sess.User, http.StatusOK)
	}
}

func HandleReset(client *backend.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var rs user.Reset
		if err := web.Decode(w, r, &rs); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding reset payload: %w", err))
		}

		if fields := validate.CheckFields(&rs); fields != nil {
			return weberr.Validation(errors.New("invalid reset payload"), fields)
		}

		msg, err := client.ResetPassword(ctx, rs)
		if err != nil {
			return fmt.Errorf("requesting password reset: %w", err)
		}

		body := struct {
			Message string `json:"message"`
		}{msg}
		return web.Respond(ctx, w, body, http.StatusOK)
	}
}

// HandleLogout tells the upstream to end the session and wipes every
// device-local record. An upstream failure does not keep the local state
// alive; logout always clears the device.
func HandleLogout(log logrus.FieldLogger, client *backend.Client, st *store.Store, session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var rec Record
		err := st.Read(store.KeyAuth, &rec)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("reading auth record: %w", err)
		}

		if rec.Token != "" {
			if err := client.Logout(ctx, rec.Token); err != nil {
				log.Warnf("upstream logout failed: %v", err)
			}
		}

		if err := st.Clear(); err != nil {
			return fmt.Errorf("clearing device records: %w", err)
		}

		if err := session.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
