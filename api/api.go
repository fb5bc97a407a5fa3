package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/takiras/storefront/api/middleware"
	"github.com/takiras/storefront/api/web"
	"github.com/takiras/storefront/backend"
	"github.com/takiras/storefront/core/auth"
	"github.com/takiras/storefront/core/cart"
	"github.com/takiras/storefront/core/feed"
	"github.com/takiras/storefront/core/product"
	"github.com/takiras/storefront/rate"
	"github.com/takiras/storefront/store"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	Session    *scs.SessionManager
	Backend    *backend.Client
	Store      *store.Store
	Feed       *feed.Feed
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

// APIMux assembles the storefront surface: the auth screens, the product
// listing with its client-side search, and the cart actions.
func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.Limiter != nil {
		a.mw = append(a.mw, middleware.RateLimit(cfg.Limiter))
	}

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := auth.Authenticate(cfg.Session)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.Backend))
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.Log, cfg.Backend, cfg.Store, cfg.Session))
	a.Handle(http.MethodPost, "/auth/admin/login", auth.HandleAdminLogin(cfg.Log, cfg.Backend, cfg.Store, cfg.Session))
	a.Handle(http.MethodPost, "/auth/reset", auth.HandleReset(cfg.Backend))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Log, cfg.Backend, cfg.Store, cfg.Session))

	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.Backend))
	a.Handle(http.MethodGet, "/products", feed.HandleList(cfg.Feed))
	a.Handle(http.MethodPost, "/products/more", feed.HandleMore(cfg.Log, cfg.Feed))

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.Store), authen)
	a.Handle(http.MethodPut, "/cart/items", cart.HandleAddItem(cfg.Store), authen)
	a.Handle(http.MethodDelete, "/cart", cart.HandleClear(cfg.Store), authen)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
