package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/storefront/internal/backend"
	"github.com/fjod/storefront/internal/session"
)

const (
	AdminPanelPath = "/admin-panel"
	OrdersPath     = "/orders"
	HomePath       = "/"
)

type AuthBackend interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.LoginResponse, error)
	Register(ctx context.Context, creds backend.Credentials) error
}

type AuthHandler struct {
	base
	backend AuthBackend
	cookie  CookieConfig
}

func NewAuthHandler(b AuthBackend, store session.Store, cookie CookieConfig, timeout time.Duration, log *slog.Logger) *AuthHandler {
	return &AuthHandler{base: newBase(store, timeout, log), backend: b, cookie: cookie}
}

type CredentialsDTO struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponseDTO struct {
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	Redirect string `json:"redirect"`
}

type MeResponseDTO struct {
	LoggedIn bool   `json:"logged_in"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
}

const msgTokenMissing = "Login failed: token missing"

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req CredentialsDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_credentials", "Please enter email and password")
		return
	}

	resp, err := h.backend.Login(ctx, backend.Credentials{Email: strings.TrimSpace(req.Email), Password: req.Password})
	if err != nil {
		h.authError(w, r, err)
		return
	}
	if resp.Token == "" {
		respondError(w, http.StatusBadGateway, "token_missing", msgTokenMissing)
		return
	}

	var name, role string
	if resp.User != nil {
		name, role = resp.User.Name, resp.User.Role
	}
	previousID := sess.ID
	sess.Login(resp.Token, name, role)

	redirect := sess.TakeRedirect()
	if redirect == "" {
		redirect = OrdersPath
		if sess.UserRole == session.RoleAdmin {
			redirect = AdminPanelPath
		}
	}
	if !h.saveOrFail(ctx, w, sess) {
		return
	}
	if err := h.store.Delete(ctx, previousID); err != nil {
		h.log.WarnContext(ctx, "failed to delete previous session", "session_id", previousID, "error", err)
	}
	h.cookie.issue(w, sess.ID)

	h.log.InfoContext(ctx, "user logged in", "session_id", sess.ID, "role", sess.UserRole)
	respondJSON(w, http.StatusOK, LoginResponseDTO{Name: sess.Name, Role: sess.UserRole, Redirect: redirect})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req CredentialsDTO
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_credentials", "Please fill name, email and password")
		return
	}

	err := h.backend.Register(ctx, backend.Credentials{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		h.authError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message":  "Registered successfully. Please login.",
		"redirect": LoginPath,
	})
}

// authError reports a failed login or registration. Unlike other views a
// 401 here means bad credentials, not an expired session.
func (h *AuthHandler) authError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
		respondError(w, apiErr.StatusCode, "auth_failed", backend.MessageOr(err, "Request failed"))
		return
	}
	h.handleError(w, r, err, "Request failed")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(ctx, sess.ID); err != nil {
		h.log.ErrorContext(ctx, "failed to delete session", "session_id", sess.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "session_error", "failed to log out")
		return
	}

	h.cookie.clear(w)
	respondJSON(w, http.StatusOK, map[string]string{"redirect": HomePath})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, MeResponseDTO{
		LoggedIn: sess.LoggedIn(),
		Name:     sess.Name,
		Role:     sess.UserRole,
		IsAdmin:  sess.IsAdmin(),
	})
}
