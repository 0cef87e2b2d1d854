package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fjod/storefront/internal/admin"
	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/orders"
	"github.com/fjod/storefront/internal/session"
)

func makeToken(role string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"id":"u1","role":%q}`, role)))
	return header + "." + body + ".sig"
}

type cartLine struct {
	id       string
	quantity int
}

// fakeBackend is an in-memory stand-in for the storefront REST backend.
type fakeBackend struct {
	mu         sync.Mutex
	products   []map[string]any
	cart       []cartLine
	orders     []map[string]any
	adminToken string
	userToken  string
	// failOrders makes POST /orders fail with a 500
	failOrders bool
	requests   []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		adminToken: makeToken("admin"),
		userToken:  makeToken("user"),
		products: []map[string]any{
			{"_id": "p1", "name": "Premium Shoes", "price": "2499", "image": "pro4.jpg"},
			{"_id": "p3", "name": "Running Shoes", "price": "1499", "image": "pro2.jpg"},
		},
	}
}

func (f *fakeBackend) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeBackend) placedOrders() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.orders...)
}

func (f *fakeBackend) product(id string) map[string]any {
	for _, p := range f.products {
		if p["_id"] == id {
			return p
		}
	}
	return nil
}

func (f *fakeBackend) cartJSON() map[string]any {
	lines := []map[string]any{}
	for _, l := range f.cart {
		lines = append(lines, map[string]any{"product": f.product(l.id), "quantity": l.quantity})
	}
	return map[string]any{"cart": map[string]any{"products": lines}}
}

func (f *fakeBackend) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.URL.Path == "/auth/login":
		var creds map[string]string
		_ = json.Unmarshal(body, &creds)
		switch creds["email"] {
		case "admin@admin.com":
			f.write(w, http.StatusOK, map[string]any{"token": f.adminToken, "user": map[string]string{"name": "Admin", "role": "admin"}})
		case "notoken@x.com":
			f.write(w, http.StatusOK, map[string]any{"user": map[string]string{"name": "X"}})
		case "user@x.com":
			f.write(w, http.StatusOK, map[string]any{"token": f.userToken, "user": map[string]string{"name": "Asha"}})
		default:
			f.write(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		}
		return
	case r.URL.Path == "/auth/register":
		f.write(w, http.StatusCreated, map[string]string{"message": "ok"})
		return
	case r.URL.Path == "/products" && r.Method == http.MethodGet:
		f.write(w, http.StatusOK, f.products)
		return
	}

	if auth := r.Header.Get("Authorization"); auth != f.adminToken && auth != f.userToken {
		f.write(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
		return
	}

	switch {
	case parts[0] == "products" && len(parts) == 2 && r.Method == http.MethodPut:
		var form map[string]any
		_ = json.Unmarshal(body, &form)
		if p := f.product(parts[1]); p != nil {
			p["name"] = form["name"]
			p["price"] = form["price"]
		}
		f.write(w, http.StatusOK, map[string]string{"message": "updated"})
	case parts[0] == "products" && len(parts) == 2 && r.Method == http.MethodDelete:
		kept := f.products[:0]
		for _, p := range f.products {
			if p["_id"] != parts[1] {
				kept = append(kept, p)
			}
		}
		f.products = kept
		f.write(w, http.StatusOK, map[string]string{"message": "deleted"})
	case parts[0] == "cart" && len(parts) == 1 && r.Method == http.MethodGet:
		f.write(w, http.StatusOK, f.cartJSON())
	case parts[0] == "cart" && len(parts) == 1 && r.Method == http.MethodPost:
		var req struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		}
		_ = json.Unmarshal(body, &req)
		if f.product(req.ProductID) == nil {
			f.write(w, http.StatusNotFound, map[string]string{"message": "Product not found"})
			return
		}
		for i := range f.cart {
			if f.cart[i].id == req.ProductID {
				f.cart[i].quantity += req.Quantity
				f.write(w, http.StatusOK, f.cartJSON())
				return
			}
		}
		f.cart = append(f.cart, cartLine{req.ProductID, req.Quantity})
		f.write(w, http.StatusCreated, f.cartJSON())
	case parts[0] == "cart" && len(parts) == 2 && r.Method == http.MethodPut:
		var req struct {
			Quantity int `json:"quantity"`
		}
		_ = json.Unmarshal(body, &req)
		for i := range f.cart {
			if f.cart[i].id == parts[1] {
				f.cart[i].quantity = req.Quantity
			}
		}
		f.write(w, http.StatusOK, f.cartJSON())
	case parts[0] == "cart" && len(parts) == 2 && r.Method == http.MethodDelete:
		kept := f.cart[:0]
		for _, l := range f.cart {
			if l.id != parts[1] {
				kept = append(kept, l)
			}
		}
		f.cart = kept
		f.write(w, http.StatusOK, f.cartJSON())
	case parts[0] == "orders" && len(parts) == 1 && r.Method == http.MethodPost:
		if f.failOrders {
			f.write(w, http.StatusInternalServerError, map[string]string{"error": "db down"})
			return
		}
		var order map[string]any
		_ = json.Unmarshal(body, &order)
		order["_id"] = fmt.Sprintf("ord-%d", len(f.orders)+1)
		order["status"] = "pending"
		f.orders = append(f.orders, order)
		f.cart = nil
		f.write(w, http.StatusCreated, map[string]any{"order": map[string]any{"_id": order["_id"]}})
	case parts[0] == "orders" && len(parts) == 1 && r.Method == http.MethodGet:
		f.write(w, http.StatusOK, map[string]any{"orders": f.orders})
	case parts[0] == "orders" && len(parts) == 3 && parts[2] == "status" && r.Method == http.MethodPut:
		var req map[string]string
		_ = json.Unmarshal(body, &req)
		for _, o := range f.orders {
			if o["_id"] == parts[1] {
				o["status"] = req["status"]
			}
		}
		f.write(w, http.StatusOK, map[string]string{"message": "ok"})
	default:
		f.write(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

type testApp struct {
	router  http.Handler
	store   *session.MemoryStore
	backend *fakeBackend
}

func newTestApp(t *testing.T, fake *fakeBackend) *testApp {
	t.Helper()

	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client := backend.NewClient(srv.URL, 5*time.Second)
	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	timeout := 5 * time.Second
	cookie := CookieConfig{TTL: time.Hour}
	cartSvc := cart.NewService(client)
	ordersSvc := orders.NewService(client, nil, nil)
	handlers := Handlers{
		Auth:     NewAuthHandler(client, store, cookie, timeout, nil),
		Catalog:  NewCatalogHandler(catalog.NewService(client), store, timeout, nil),
		Cart:     NewCartHandler(cartSvc, store, timeout, nil),
		Checkout: NewCheckoutHandler(checkout.NewService(client, nil, nil), cartSvc, store, timeout, nil),
		Orders:   NewOrdersHandler(ordersSvc, store, timeout, nil),
		Admin:    NewAdminHandler(admin.NewService(client, ordersSvc, nil), store, timeout, nil),
	}
	router := NewRouter(handlers, store, RouterConfig{RequestTimeout: timeout, Cookie: cookie}, nil)

	return &testApp{router: router, store: store, backend: fake}
}

// do sends a request in the given session ("" starts a new one) and returns
// the recorder and the session id the gateway used.
func (a *testApp) do(t *testing.T, sessionID, method, path string, body any) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sessionID})
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec, rec.Header().Get(SessionHeader)
}

// login starts a session logged in as email.
func (a *testApp) login(t *testing.T, email string) string {
	t.Helper()
	rec, id := a.do(t, "", http.MethodPost, "/login", CredentialsDTO{Email: email, Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return id
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}
