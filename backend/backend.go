// Package backend is the client for the upstream shop API. The storefront
// owns no business logic; every authoritative answer about users,
// products and carts comes from these endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/takiras/storefront/core/cart"
	"github.com/takiras/storefront/core/product"
	"github.com/takiras/storefront/core/user"
)

// Session is what a successful login yields: the profile plus the bearer
// token to attach on authenticated calls.
type Session struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

type Client struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) SignUp(ctx context.Context, su user.Signup) (user.User, error) {
	var usr user.User
	if err := c.do(ctx, http.MethodPost, "/auth/sign_up", "", su, &usr); err != nil {
		return user.User{}, fmt.Errorf("signing up: %w", err)
	}
	return usr, nil
}

func (c *Client) Login(ctx context.Context, lg user.Login) (Session, error) {
	var body struct {
		Data Session `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", lg, &body); err != nil {
		return Session{}, fmt.Errorf("logging in: %w", err)
	}
	return body.Data, nil
}

func (c *Client) AdminLogin(ctx context.Context, lg user.Login) (Session, error) {
	var body struct {
		Data Session `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/admin/login", "", lg, &body); err != nil {
		return Session{}, fmt.Errorf("logging in as admin: %w", err)
	}
	return body.Data, nil
}

// ResetPassword asks the upstream to start a password recovery for the
// address. The returned message is meant for the user verbatim.
func (c *Client) ResetPassword(ctx context.Context, rs user.Reset) (string, error) {
	var body struct {
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/reset", "", rs, &body); err != nil {
		return "", fmt.Errorf("requesting password reset: %w", err)
	}
	return body.Message, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	if err := c.do(ctx, http.MethodGet, "/auth/logout", token, nil, nil); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	return nil
}

func (c *Client) Product(ctx context.Context, id string) (product.Product, error) {
	var p product.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), "", nil, &p); err != nil {
		return product.Product{}, fmt.Errorf("fetching product[%s]: %w", id, err)
	}
	return p, nil
}

func (c *Client) Products(ctx context.Context, q product.PageQuery) (product.Page, error) {
	params := url.Values{}
	if q.PreviousPage != "" {
		params.Set("previousPage", q.PreviousPage)
	}
	if q.NextPage != "" {
		params.Set("nextPage", q.NextPage)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/products"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page product.Page
	if err := c.do(ctx, http.MethodGet, path, "", nil, &page); err != nil {
		return product.Page{}, fmt.Errorf("fetching products page: %w", err)
	}
	return page, nil
}

// Cart fetches the authoritative cart of a user.
func (c *Client) Cart(ctx context.Context, token string, userID string) (cart.Cart, error) {
	var body struct {
		Data cart.Cart `json:"data"`
	}
	path := "/cart/users/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &body); err != nil {
		return cart.Cart{}, fmt.Errorf("fetching cart of user[%s]: %w", userID, err)
	}
	return body.Data, nil
}

func (c *Client) do(ctx context.Context, method string, path string, token string, in any, out any) error {
	var payload io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	r, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	if in != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	r.Header.Set("X-Request-Id", uuid.NewString())

	w, err := c.hc.Do(r)
	if err != nil {
		return err
	}
	defer w.Body.Close()

	if w.StatusCode < 200 || w.StatusCode > 299 {
		var er struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(w.Body).Decode(&er); err == nil {
			if er.Error != "" {
				return fmt.Errorf("%s %s: %s (status %d)", method, path, er.Error, w.StatusCode)
			}
			if er.Message != "" {
				return fmt.Errorf("%s %s: %s (status %d)", method, path, er.Message, w.StatusCode)
			}
		}
		return fmt.Errorf("%s %s: status %d", method, path, w.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}
