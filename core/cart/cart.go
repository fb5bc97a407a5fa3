package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/takiras/storefront/store"
)

// Cart is the device-local shopping cart. Items holds product ids in the
// order they were added; the same id may appear more than once. Total is
// server-authoritative and is never recomputed by local appends.
type Cart struct {
	User  string   `json:"user"`
	Items []string `json:"items"`
	Total float64  `json:"total"`
}

var (
	ErrNoProduct = errors.New("missing product id")
	ErrNoUser    = errors.New("missing user id")
)

// Add appends productID to the cart of userID, creating the cart on
// first use. The read-modify-write runs as one atomic store update, so
// two in-process adds cannot interleave mid-cycle.
func Add(st *store.Store, productID string, userID string) error {
	if productID == "" {
		return ErrNoProduct
	}
	if userID == "" {
		return ErrNoUser
	}

	err := store.Update(st, store.KeyCart, func(c Cart, found bool) (Cart, error) {
		if !found {
			c = Cart{User: userID, Items: []string{}, Total: 0}
		}
		c.Items = append(c.Items, productID)
		return c, nil
	})
	if err != nil {
		return fmt.Errorf("adding product[%s] to cart: %w", productID, err)
	}
	return nil
}

// Fetch returns the locally stored cart, or an empty cart for userID if
// none was stored yet.
func Fetch(st *store.Store, userID string) (Cart, error) {
	var c Cart
	err := st.Read(store.KeyCart, &c)
	if errors.Is(err, store.ErrNotFound) {
		return Cart{User: userID, Items: []string{}, Total: 0}, nil
	}
	if err != nil {
		return Cart{}, fmt.Errorf("reading stored cart: %w", err)
	}
	return c, nil
}

// Clear drops the locally stored cart.
func Clear(st *store.Store) error {
	if err := st.Delete(store.KeyCart); err != nil {
		return fmt.Errorf("clearing stored cart: %w", err)
	}
	return nil
}

// Fetcher retrieves the authoritative cart of a user from the upstream
// shop API.
type Fetcher interface {
	Cart(ctx context.Context, token string, userID string) (Cart, error)
}

// Bootstrap reconciles the local cart with the server's: the upstream
// record fully replaces whatever was stored, last writer wins. On fetch
// failure the local cart is kept as-is and the error is only logged; the
// user continues with stale state and a later action can retry.
func Bootstrap(ctx context.Context, log logrus.FieldLogger, st *store.Store, f Fetcher, token string, userID string) {
	c, err := f.Cart(ctx, token, userID)
	if err != nil {
		log.WithField("user_id", userID).Warnf("cart bootstrap failed, keeping local cart: %v", err)
		return
	}

	if err := st.Write(store.KeyCart, c); err != nil {
		log.WithField("user_id", userID).Warnf("cart bootstrap failed, keeping local cart: %v", err)
	}
}
