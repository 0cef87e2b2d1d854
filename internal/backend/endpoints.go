package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/storefront/internal/domain"
)

// Credentials is the body of POST /auth/login and /auth/register.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	creds.Name = ""
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, creds Credentials) error {
	return c.do(ctx, http.MethodPost, "/auth/register", "", creds, nil)
}

// ListProducts accepts either a bare array or {"products": [...]}.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &raw); err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	var products []domain.Product
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &products); err != nil {
			return nil, fmt.Errorf("%w: products: %v", ErrDecode, err)
		}
		return products, nil
	}

	var wrapped struct {
		Products []domain.Product `json:"products"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: products: %v", ErrDecode, err)
		}
	}
	return wrapped.Products, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id domain.ID, form domain.ProductForm) error {
	return c.do(ctx, http.MethodPut, "/products/"+escape(id), token, form, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id domain.ID) error {
	return c.do(ctx, http.MethodDelete, "/products/"+escape(id), token, nil, nil)
}

type cartEnvelope struct {
	Cart json.RawMessage `json:"cart"`
}

// GetCart returns the raw "cart" field; its shape varies by endpoint and is
// normalized by the cart package.
func (c *Client) GetCart(ctx context.Context, token string) (json.RawMessage, error) {
	var env cartEnvelope
	if err := c.do(ctx, http.MethodGet, "/cart", token, nil, &env); err != nil {
		return nil, err
	}
	return env.Cart, nil
}

func (c *Client) AddToCart(ctx context.Context, token string, productID domain.ID, quantity int) error {
	body := struct {
		ProductID domain.ID `json:"productId"`
		Quantity  int       `json:"quantity"`
	}{productID, quantity}
	return c.do(ctx, http.MethodPost, "/cart", token, body, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, token string, id domain.ID, quantity int) (json.RawMessage, error) {
	body := struct {
		Quantity int `json:"quantity"`
	}{quantity}
	var env cartEnvelope
	if err := c.do(ctx, http.MethodPut, "/cart/"+escape(id), token, body, &env); err != nil {
		return nil, err
	}
	return env.Cart, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, token string, id domain.ID) (json.RawMessage, error) {
	var env cartEnvelope
	if err := c.do(ctx, http.MethodDelete, "/cart/"+escape(id), token, nil, &env); err != nil {
		return nil, err
	}
	return env.Cart, nil
}

// CreateOrder submits an order and returns the id the backend assigned.
func (c *Client) CreateOrder(ctx context.Context, token string, order domain.OrderRequest) (domain.ID, error) {
	var resp struct {
		Order struct {
			ID domain.ID `json:"_id"`
		} `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders", token, order, &resp); err != nil {
		return "", err
	}
	return resp.Order.ID, nil
}

// ListOrders returns the caller's orders (all orders for admins), sanitized.
// Orders are decoded one by one; an entry that cannot be read is logged and
// skipped so the rest of the history still shows.
func (c *Client) ListOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var resp struct {
		Orders json.RawMessage `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders", token, nil, &resp); err != nil {
		return nil, err
	}

	var elems []json.RawMessage
	if raw := bytes.TrimSpace(resp.Orders); len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, fmt.Errorf("%w: orders: %v", ErrDecode, err)
		}
	}

	orders := make([]domain.Order, 0, len(elems))
	for i, e := range elems {
		var o domain.Order
		if err := json.Unmarshal(e, &o); err != nil {
			c.log.WarnContext(ctx, "skipping unreadable order", "index", i, "error", err)
			continue
		}
		o.Sanitize()
		orders = append(orders, o)
	}
	return orders, nil
}

// UpdateOrderStatus sends the new status; the response body is ignored.
func (c *Client) UpdateOrderStatus(ctx context.Context, token string, id domain.ID, status domain.OrderStatus) error {
	body := struct {
		Status domain.OrderStatus `json:"status"`
	}{status}
	return c.do(ctx, http.MethodPut, "/orders/"+escape(id)+"/status", token, body, nil)
}

func escape(id domain.ID) string {
	return url.PathEscape(id.String())
}
