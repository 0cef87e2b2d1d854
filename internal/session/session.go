package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/domain"
)

// Session is the per-visitor storefront state. It lives only as long as
// its TTL, like a browser tab's session storage.
type Session struct {
	ID    string `json:"id"`
	Token string `json:"token,omitempty"`
	Name  string `json:"name,omitempty"`
	// UserRole is what the login response reported; it picks the post-login
	// page and is shown in the header. Permission hints use Role().
	UserRole string `json:"user_role,omitempty"`
	// RedirectAfterLogin is the page to return to once logged in.
	RedirectAfterLogin string            `json:"redirect_after_login,omitempty"`
	Cart               []domain.CartItem `json:"cart"`
	Pending            catalog.Pending   `json:"pending"`
	Checkout           checkout.Flow     `json:"checkout"`
	CreatedAt          time.Time         `json:"created_at"`
}

func New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		Cart:      []domain.CartItem{},
		Pending:   catalog.Pending{},
		CreatedAt: time.Now().UTC(),
	}
}

func (s *Session) LoggedIn() bool {
	return s.Token != ""
}

// Role is the role claim decoded from the token, or "" when absent.
func (s *Session) Role() string {
	return RoleFromToken(s.Token)
}

func (s *Session) IsAdmin() bool {
	return s.Role() == RoleAdmin
}

// Login starts a new identity: the id is rotated and the cart copy, pending
// counters and checkout state of the previous one are dropped. Only the
// page to return to survives. Callers delete the old id from the store.
func (s *Session) Login(token, name, userRole string) {
	if userRole == "" {
		userRole = "user"
	}
	s.ID = uuid.NewString()
	s.Token = token
	s.Name = name
	s.UserRole = userRole
	s.Cart = []domain.CartItem{}
	s.Pending = catalog.Pending{}
	s.Checkout = checkout.Flow{}
	s.CreatedAt = time.Now().UTC()
}

// TakeRedirect returns and clears the saved post-login page.
func (s *Session) TakeRedirect() string {
	path := s.RedirectAfterLogin
	s.RedirectAfterLogin = ""
	return path
}

// normalize restores empty collections after decoding.
func (s *Session) normalize() {
	if s.Cart == nil {
		s.Cart = []domain.CartItem{}
	}
	if s.Pending == nil {
		s.Pending = catalog.Pending{}
	}
}
