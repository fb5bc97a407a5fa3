package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/sirupsen/logrus"
	"github.com/takiras/storefront/api"
	"github.com/takiras/storefront/backend"
	"github.com/takiras/storefront/core/cart"
	"github.com/takiras/storefront/core/feed"
	"github.com/takiras/storefront/core/product"
	"github.com/takiras/storefront/core/user"
	"github.com/takiras/storefront/random"
	"github.com/takiras/storefront/store"
)

// Shop is a stub of the upstream shop API. Tests steer it directly:
// registered users, the authoritative cart, and the product pages keyed
// by the cursor that selects them.
type Shop struct {
	mu    sync.Mutex
	users map[string]user.User // email -> profile
	cart  cart.Cart
	pages map[string]product.Page

	Server *httptest.Server
}

func NewShop() *Shop {
	s := &Shop{
		users: make(map[string]user.User),
		pages: make(map[string]product.Page),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/sign_up", s.handleSignUp)
	mux.HandleFunc("/auth/login", s.handleLogin)
	mux.HandleFunc("/auth/admin/login", s.handleLogin)
	mux.HandleFunc("/auth/reset", s.handleReset)
	mux.HandleFunc("/auth/logout", s.handleLogout)
	mux.HandleFunc("/products", s.handleProducts)
	mux.HandleFunc("/products/", s.handleProduct)
	mux.HandleFunc("/cart/users/", s.handleCart)

	s.Server = httptest.NewServer(mux)
	return s
}

func (s *Shop) SetCart(c cart.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = c
}

func (s *Shop) SetPage(cursor string, p product.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[cursor] = p
}

func (s *Shop) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var su user.Signup
	if err := json.NewDecoder(r.Body).Decode(&su); err != nil {
		http.Error(w, `{"error":"bad payload"}`, http.StatusBadRequest)
		return
	}

	usr := user.User{
		ID:        "usr-" + random.String(8),
		FirstName: su.FirstName,
		LastName:  su.LastName,
		Email:     su.Email,
		Roles:     su.Roles,
	}

	s.mu.Lock()
	s.users[su.Email] = usr
	s.mu.Unlock()

	json.NewEncoder(w).Encode(usr)
}

func (s *Shop) handleLogin(w http.ResponseWriter, r *http.Request) {
	var lg user.Login
	if err := json.NewDecoder(r.Body).Decode(&lg); err != nil {
		http.Error(w, `{"error":"bad payload"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	usr, ok := s.users[lg.Email]
	s.mu.Unlock()
	if !ok {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
		return
	}

	body := struct {
		Data backend.Session `json:"data"`
	}{backend.Session{Token: "tok-" + random.String(12), User: usr}}
	json.NewEncoder(w).Encode(body)
}

func (s *Shop) handleReset(w http.ResponseWriter, r *http.Request) {
	body := struct {
		Message    string `json:"message"`
		StatusCode int    `json:"statusCode"`
	}{"reset email sent", http.StatusOK}
	json.NewEncoder(w).Encode(body)
}

func (s *Shop) handleLogout(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(user.User{})
}

func (s *Shop) handleProducts(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("nextPage")

	s.mu.Lock()
	page := s.pages[cursor]
	s.mu.Unlock()

	json.NewEncoder(w).Encode(page)
}

func (s *Shop) handleProduct(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/products/")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, page := range s.pages {
		for _, p := range page.Data {
			if p.ID == id {
				json.NewEncoder(w).Encode(p)
				return
			}
		}
	}
	http.Error(w, `{"error":"product not found"}`, http.StatusNotFound)
}

func (s *Shop) handleCart(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		http.Error(w, `{"error":"missing token"}`, http.StatusUnauthorized)
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/cart/users/")

	s.mu.Lock()
	c := s.cart
	s.mu.Unlock()

	if c.User == "" {
		c = cart.Cart{User: userID, Items: []string{}, Total: 0}
	}

	body := struct {
		Data cart.Cart `json:"data"`
	}{c}
	json.NewEncoder(w).Encode(body)
}

// TestEnv wires a storefront against a stub shop, the way the server
// entrypoint does, plus a cookie-aware HTTP client.
type TestEnv struct {
	Shop  *Shop
	Store *store.Store
	Feed  *feed.Feed
	URL   string

	UserEmail string
	UserPass  string

	server *httptest.Server
	client *http.Client
}

func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	shop := NewShop()
	t.Cleanup(shop.Server.Close)

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	upstream := backend.New(shop.Server.URL, 5*time.Second)

	sessionManager := scs.New()
	sessionManager.Lifetime = time.Hour

	fd := feed.New(upstream, 0)

	mux := api.APIMux(api.APIConfig{
		Log:     log,
		Session: sessionManager,
		Backend: upstream,
		Store:   st,
		Feed:    fd,
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("creating cookie jar: %v", err)
	}

	env := &TestEnv{
		Shop:      shop,
		Store:     st,
		Feed:      fd,
		URL:       srv.URL,
		UserEmail: random.String(8) + "@test.com",
		UserPass:  random.String(12),
		server:    srv,
		client:    &http.Client{Jar: jar},
	}

	env.signupOK(t)
	return env
}

func (env *TestEnv) Client() *http.Client { return env.client }

func (env *TestEnv) request(t *testing.T, method string, path string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshaling payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	r, err := http.NewRequest(method, env.URL+path, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	if payload != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	w, err := env.client.Do(r)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return w
}

func decode(t *testing.T, w *http.Response, out any) {
	t.Helper()
	defer w.Body.Close()

	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func (env *TestEnv) signupOK(t *testing.T) {
	t.Helper()

	su := user.Signup{
		FirstName: "Test",
		LastName:  "User",
		Email:     env.UserEmail,
		Password:  env.UserPass,
		Roles:     []string{"user"},
	}

	w := env.request(t, http.MethodPost, "/auth/signup", su)
	defer w.Body.Close()
	if w.StatusCode != http.StatusCreated {
		t.Fatalf("can't sign up: status code %s", w.Status)
	}
}

func (env *TestEnv) loginOK(t *testing.T) user.User {
	t.Helper()

	lg := user.Login{Email: env.UserEmail, Password: env.UserPass}
	w := env.request(t, http.MethodPost, "/auth/login", lg)
	if w.StatusCode != http.StatusOK {
		w.Body.Close()
		t.Fatalf("can't log in: status code %s", w.Status)
	}

	var usr user.User
	decode(t, w, &usr)
	return usr
}

func (env *TestEnv) logoutOK(t *testing.T) {
	t.Helper()

	w := env.request(t, http.MethodPost, "/auth/logout", nil)
	defer w.Body.Close()
	if w.StatusCode != http.StatusNoContent {
		t.Fatalf("can't log out: status code %s", w.Status)
	}
}

func (env *TestEnv) addItemOK(t *testing.T, productID string) cart.Cart {
	t.Helper()

	w := env.request(t, http.MethodPut, "/cart/items", cart.ItemNew{ProductID: productID})
	if w.StatusCode != http.StatusOK {
		w.Body.Close()
		t.Fatalf("can't add item %s: status code %s", productID, w.Status)
	}

	var c cart.Cart
	decode(t, w, &c)
	return c
}

func (env *TestEnv) listProducts(t *testing.T, query string) (products []product.Product, info product.PageInfo, matched int) {
	t.Helper()

	path := "/products"
	if query != "" {
		path += "?search=" + query
	}

	w := env.request(t, http.MethodGet, path, nil)
	if w.StatusCode != http.StatusOK {
		w.Body.Close()
		t.Fatalf("can't list products: status code %s", w.Status)
	}

	var body struct {
		Data     []product.Product `json:"data"`
		PageInfo product.PageInfo  `json:"pageInfo"`
		Matched  int               `json:"matched"`
	}
	decode(t, w, &body)
	return body.Data, body.PageInfo, body.Matched
}

func (env *TestEnv) loadMoreOK(t *testing.T) {
	t.Helper()

	w := env.request(t, http.MethodPost, "/products/more", nil)
	defer w.Body.Close()
	if w.StatusCode != http.StatusOK {
		t.Fatalf("can't load more products: status code %s", w.Status)
	}
}

func page(info product.PageInfo, ids ...string) product.Page {
	p := product.Page{PageInfo: info}
	for _, id := range ids {
		p.Data = append(p.Data, product.Product{
			ID:   id,
			Name: fmt.Sprintf("product %s", id),
		})
	}
	return p
}
