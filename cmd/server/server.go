package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/sirupsen/logrus"
	"github.com/takiras/storefront/api"
	"github.com/takiras/storefront/backend"
	"github.com/takiras/storefront/config"
	"github.com/takiras/storefront/core/auth"
	"github.com/takiras/storefront/core/cart"
	"github.com/takiras/storefront/core/feed"
	"github.com/takiras/storefront/rate"
	"github.com/takiras/storefront/store"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting storefront")
	defer logger.Info("shutdown complete")

	const prefix = "STOREFRONT"
	var cfg config.Config
	if _, err := conf.Parse(prefix, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	lw := logger.Writer()
	defer lw.Close()
	errLog := log.New(lw, "", 0)

	st, err := store.New(cfg.Store.Dir)
	if err != nil {
		return fmt.Errorf("opening device store: %w", err)
	}

	upstream := backend.New(cfg.Upstream.URL, cfg.Upstream.Timeout)

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime

	fd := feed.New(upstream, cfg.Feed.PageLimit)

	// First paint of the listing. A failure here is the same silent
	// degradation as any later page fetch.
	loadCtx, loadCancel := context.WithTimeout(context.Background(), cfg.Upstream.Timeout)
	if err := fd.Load(loadCtx); err != nil {
		logger.Warnf("loading first product page failed: %v", err)
	}
	loadCancel()

	// Session bootstrap: a persisted auth subject gets its cart
	// overwritten with the server's authoritative copy.
	var rec auth.Record
	err = st.Read(store.KeyAuth, &rec)
	switch {
	case errors.Is(err, store.ErrNotFound):
		logger.Info("no persisted auth, starting anonymous session")
	case err != nil:
		return fmt.Errorf("reading auth record: %w", err)
	default:
		bootCtx, bootCancel := context.WithTimeout(context.Background(), cfg.Upstream.Timeout)
		cart.Bootstrap(bootCtx, logger, st, upstream, rec.Token, rec.User.ID)
		bootCancel()
	}

	limiter := rate.NewLimiter(cfg.Rate.Burst, cfg.Rate.Expiry, cfg.Rate.RPS)

	mux := api.APIMux(api.APIConfig{
		CorsOrigin: cfg.Cors.Origin,
		Log:        logger,
		Session:    sessionManager,
		Backend:    upstream,
		Store:      st,
		Feed:       fd,
		Limiter:    limiter,
	})

	srv := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     errLog,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting storefront router at %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}
