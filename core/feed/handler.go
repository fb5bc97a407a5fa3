package feed

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/takiras/storefront/api/web"
	"github.com/takiras/storefront/core/product"
)

type listing struct {
	Data     []product.Product `json:"data"`
	PageInfo product.PageInfo  `json:"pageInfo"`
	Matched  int               `json:"matched"`
}

// HandleList serves the accumulated product listing, optionally filtered
// by the search query. The match count is the length of the filtered
// result; a zero count on a non-empty query is where a server-side
// search fallback would kick in.
// TODO: fall back to an upstream search once the shop API exposes one.
func HandleList(f *Feed) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		items := f.Products()

		query := r.URL.Query().Get("search")
		if query != "" {
			items = product.Filter(items, query)
		}

		body := listing{
			Data:     items,
			PageInfo: f.PageInfo(),
			Matched:  len(items),
		}
		return web.Respond(ctx, w, body, http.StatusOK)
	}
}

// HandleMore is the load-more action: advance the cursors and fetch the
// next page. A failed fetch degrades silently; the response carries the
// unchanged accumulated list and the failure is only logged.
func HandleMore(log logrus.FieldLogger, f *Feed) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := f.More(ctx); err != nil {
			log.Warnf("loading next product page failed, keeping accumulated list: %v", err)
		}

		body := listing{
			Data:     f.Products(),
			PageInfo: f.PageInfo(),
			Matched:  len(f.Products()),
		}
		return web.Respond(ctx, w, body, http.StatusOK)
	}
}
