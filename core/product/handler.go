package product

import (
	"context"
	"errors"
	"net/http"

	"github.com/takiras/storefront/api/web"
	"github.com/takiras/storefront/api/weberr"
)

// Getter fetches a single product from the upstream catalog.
type Getter interface {
	Product(ctx context.Context, id string) (Product, error)
}

func HandleShow(client Getter) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if id == "" {
			return weberr.BadRequest(errors.New("missing product id"))
		}

		p, err := client.Product(ctx, id)
		if err != nil {
			return weberr.NotFound(err)
		}

		return web.Respond(ctx, w, p, http.StatusOK)
	}
}
