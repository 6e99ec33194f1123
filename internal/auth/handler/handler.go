package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stackwise/internal/auth/oidc"
	"stackwise/internal/auth/token"
	"stackwise/pkg/domain"
	dErrors "stackwise/pkg/domain-errors"
	"stackwise/pkg/email"
	"stackwise/pkg/platform/httputil"
	authmw "stackwise/pkg/platform/middleware/auth"
	"stackwise/pkg/requestcontext"
)

const (
	oidcCookieName = "stackwise_oidc"
	oidcCookieTTL  = 10 * time.Minute
)

// Tokens issues and validates session tokens.
type Tokens interface {
	Issue(userID, email, name string) (string, *token.Claims, error)
	Validate(tokenString string) (*token.Claims, error)
}

// Revoker records signed-out sessions.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// Provider runs the OIDC authorization code flow.
type Provider interface {
	AuthCodeURL(state, nonce string) string
	Exchange(ctx context.Context, code, nonce string) (*oidc.Identity, error)
}

// Handler serves the sign-in gate.
type Handler struct {
	tokens   Tokens
	revoker  Revoker
	provider Provider
	logger   *slog.Logger
	secure   bool
	now      func() time.Time
}

type Option func(*Handler)

// WithProvider switches sign-in to OIDC. Without it, POST /auth/signin
// accepts an email address.
func WithProvider(p Provider) Option {
	return func(h *Handler) {
		h.provider = p
	}
}

// WithSecureCookies marks cookies Secure, for TLS deployments.
func WithSecureCookies(secure bool) Option {
	return func(h *Handler) {
		h.secure = secure
	}
}

func New(tokens Tokens, revoker Revoker, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{tokens: tokens, revoker: revoker, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the public sign-in routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/signin", h.HandleSignInInfo)
	r.Post("/auth/signout", h.HandleSignOut)
	if h.provider != nil {
		r.Get("/auth/login", h.HandleLogin)
		r.Get("/auth/callback", h.HandleCallback)
		return
	}
	r.Post("/auth/signin", h.HandleSignIn)
}

// RegisterProtected mounts routes that need an authenticated session.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/auth/session", h.HandleSession)
}

// HandleSignInInfo handles GET /auth/signin.
func (h *Handler) HandleSignInInfo(w http.ResponseWriter, r *http.Request) {
	if h.provider != nil {
		if strings.Contains(r.Header.Get("Accept"), "text/html") {
			http.Redirect(w, r, "/auth/login", http.StatusFound)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, SignInInfo{Mode: "oidc", LoginURL: "/auth/login"})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SignInInfo{Mode: "session"})
}

// HandleSignIn handles POST /auth/signin in session mode.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[SignInRequest](w, r, h.logger)
	if !ok {
		return
	}
	addr := req.NormalizedEmail()
	resp, err := h.startSession(w, addr, email.DisplayName(addr))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to issue session", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign in"))
		return
	}
	h.logger.InfoContext(r.Context(), "signed in",
		"request_id", requestcontext.RequestID(r.Context()),
		"user_id", resp.User.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleLogin handles GET /auth/login: redirect to the issuer with a fresh
// state and nonce pinned in a short-lived cookie.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state, nonce := uuid.NewString(), uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     oidcCookieName,
		Value:    state + "." + nonce,
		Path:     "/auth",
		MaxAge:   int(oidcCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state, nonce), http.StatusFound)
}

// HandleCallback handles GET /auth/callback.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	h.clearCookie(w, oidcCookieName, "/auth")

	if idpErr := q.Get("error"); idpErr != "" {
		h.logger.WarnContext(ctx, "identity provider returned error", "error", idpErr)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "sign-in was not completed"))
		return
	}
	c, err := r.Cookie(oidcCookieName)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "sign-in session expired"))
		return
	}
	state, nonce, found := strings.Cut(c.Value, ".")
	if !found || state == "" || state != q.Get("state") {
		h.logger.WarnContext(ctx, "oidc state mismatch", "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "sign-in state mismatch"))
		return
	}

	identity, err := h.provider.Exchange(ctx, q.Get("code"), nonce)
	if err != nil {
		h.logger.WarnContext(ctx, "oidc exchange failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	addr, ok := email.Normalize(identity.Email)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "identity provider returned an invalid email"))
		return
	}
	name := identity.Name
	if name == "" {
		name = email.DisplayName(addr)
	}
	if _, err := h.startSession(w, addr, name); err != nil {
		h.logger.ErrorContext(ctx, "failed to issue session", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign in"))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleSignOut handles POST /auth/signout. The session id is revoked until
// the token would have expired; the cookie is cleared either way.
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if c, err := r.Cookie(authmw.CookieName); err == nil && c.Value != "" {
		if claims, err := h.tokens.Validate(c.Value); err == nil {
			ttl := claims.ExpiresAt.Sub(h.now())
			if ttl > 0 {
				if err := h.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
					h.logger.ErrorContext(ctx, "failed to revoke session", "error", err)
					httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign out"))
					return
				}
			}
		}
	}
	h.clearCookie(w, authmw.CookieName, "/")
	httputil.WriteJSON(w, http.StatusOK, SignOutResponse{Success: true})
}

// HandleSession handles GET /auth/session.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	addr := requestcontext.Email(ctx)
	httputil.WriteJSON(w, http.StatusOK, SessionResponse{User: SessionUser{
		ID:    requestcontext.UserID(ctx),
		Email: addr,
		Name:  email.DisplayName(addr),
	}})
}

// startSession issues a token for addr and sets the session cookie. The user
// id is derived from the email so it is stable across sign-ins.
func (h *Handler) startSession(w http.ResponseWriter, addr, name string) (*SignInResponse, error) {
	userID := domain.UserIDFromEmail(addr).String()
	signed, claims, err := h.tokens.Issue(userID, addr, name)
	if err != nil {
		return nil, err
	}
	expires := claims.ExpiresAt.Time
	http.SetCookie(w, &http.Cookie{
		Name:     authmw.CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(expires.Sub(h.now()).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return &SignInResponse{
		Success:   true,
		User:      SessionUser{ID: userID, Email: addr, Name: name},
		ExpiresAt: expires,
	}, nil
}

func (h *Handler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
