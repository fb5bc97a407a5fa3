package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/takiras/storefront/api/web"
	"github.com/takiras/storefront/api/weberr"
	"github.com/takiras/storefront/core/claims"
	"github.com/takiras/storefront/store"
	"github.com/takiras/storefront/validate"
)

type ItemNew struct {
	ProductID string `json:"productId" validate:"required"`
}

func HandleShow(st *store.Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		c, err := Fetch(st, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching cart: %w", err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

// HandleAddItem appends a product to the authenticated user's cart.
// Redirecting anonymous users to the login screen is the UI's job; here
// a missing subject is a plain 401.
func HandleAddItem(st *store.Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var item ItemNew
		if err := web.Decode(w, r, &item); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding cart item: %w", err))
		}

		if fields := validate.CheckFields(&item); fields != nil {
			return weberr.Validation(errors.New("invalid cart item"), fields)
		}

		if err := Add(st, item.ProductID, clm.UserID); err != nil {
			return fmt.Errorf("adding item to cart: %w", err)
		}

		c, err := Fetch(st, clm.UserID)
		if err != nil {
			return fmt.Errorf("fetching cart: %w", err)
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleClear(st *store.Store) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if _, err := claims.Get(ctx); err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		if err := Clear(st); err != nil {
			return fmt.Errorf("clearing cart: %w", err)
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
