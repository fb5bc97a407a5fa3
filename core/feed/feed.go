// Package feed accumulates the product listing page by page. Products
// arrive through cursor-paginated upstream requests; the feed keeps each
// product exactly once, in the order it was first seen, no matter how
// often overlapping pages return it.
package feed

import (
	"context"
	"sync"

	"github.com/takiras/storefront/core/product"
)

// Lister fetches one page of products from the upstream catalog.
type Lister interface {
	Products(ctx context.Context, q product.PageQuery) (product.Page, error)
}

type Feed struct {
	client Lister
	limit  int

	mu       sync.Mutex
	seen     map[string]struct{}
	items    []product.Product
	previous string
	next     string
	info     product.PageInfo

	// seq tags every request with the order it was issued in. A response
	// carrying an older tag than the latest request is stale and gets
	// discarded instead of clobbering newer state.
	seq    uint64
	cancel context.CancelFunc
}

func New(client Lister, limit int) *Feed {
	return &Feed{
		client: client,
		limit:  limit,
		seen:   make(map[string]struct{}),
	}
}

// Load fetches the page selected by the current cursor pair and folds
// the unseen products into the accumulated list. Issuing a new load
// cancels the previous in-flight one; if a superseded response still
// arrives, it is dropped. On failure the accumulated state is unchanged.
func (f *Feed) Load(ctx context.Context) error {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	if f.cancel != nil {
		f.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	q := product.PageQuery{
		PreviousPage: f.previous,
		NextPage:     f.next,
		Limit:        f.limit,
	}
	f.mu.Unlock()
	defer cancel()

	page, err := f.client.Products(ctx, q)

	f.mu.Lock()
	defer f.mu.Unlock()

	if seq != f.seq {
		// A newer load was issued while this one was in flight.
		return nil
	}
	f.cancel = nil

	if err != nil {
		return err
	}

	for _, p := range page.Data {
		if p.ID == "" {
			continue
		}
		if _, ok := f.seen[p.ID]; ok {
			continue
		}
		f.seen[p.ID] = struct{}{}
		f.items = append(f.items, p)
	}
	f.info = page.PageInfo

	return nil
}

// More advances the cursor pair to the next page and loads it. Without a
// next page it re-fetches the current selection.
func (f *Feed) More(ctx context.Context) error {
	f.mu.Lock()
	if f.info.HasNext {
		f.previous = ""
		f.next = f.info.Next
	}
	f.mu.Unlock()

	return f.Load(ctx)
}

// Products returns a snapshot of the accumulated list in first-seen order.
func (f *Feed) Products() []product.Product {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]product.Product, len(f.items))
	copy(items, f.items)
	return items
}

func (f *Feed) PageInfo() product.PageInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.info
}

// Search filters the accumulated list without a server round-trip.
func (f *Feed) Search(query string) []product.Product {
	return product.Filter(f.Products(), query)
}
