package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"stackwise/internal/auth/oidc"
	"stackwise/internal/auth/store/revocation"
	"stackwise/internal/auth/token"
	"stackwise/pkg/domain"
	dErrors "stackwise/pkg/domain-errors"
	authmw "stackwise/pkg/platform/middleware/auth"
)

type fakeProvider struct {
	gotNonce string
	identity *oidc.Identity
}

func (f *fakeProvider) AuthCodeURL(state, nonce string) string {
	return "https://idp.example.com/authorize?" + url.Values{"state": {state}, "nonce": {nonce}}.Encode()
}

func (f *fakeProvider) Exchange(_ context.Context, code, nonce string) (*oidc.Identity, error) {
	f.gotNonce = nonce
	if code != "good-code" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authorization code rejected")
	}
	return f.identity, nil
}

type AuthHandlerSuite struct {
	suite.Suite
	tokens      *token.Service
	revocations *revocation.InMemoryStore
	router      chi.Router
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	s.tokens = token.NewService("test-secret", time.Hour)
	s.revocations = revocation.NewInMemoryStore()
	s.router = s.newRouter()
}

func (s *AuthHandlerSuite) newRouter(opts ...Option) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.tokens, s.revocations, logger, opts...)
	r := chi.NewRouter()
	h.Register(r)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(token.NewMiddlewareAdapter(s.tokens), s.revocations, logger))
		h.RegisterProtected(r)
	})
	return r
}

func (s *AuthHandlerSuite) serve(r chi.Router, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == authmw.CookieName {
			return c
		}
	}
	return nil
}

func (s *AuthHandlerSuite) TestSignInSessionAndSignOut() {
	w := s.serve(s.router, httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"email":" Ada.Lovelace@Example.com "}`)))
	s.Require().Equal(http.StatusOK, w.Code)

	var resp SignInResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.True(resp.Success)
	s.Equal("ada.lovelace@example.com", resp.User.Email)
	s.Equal("Ada Lovelace", resp.User.Name)
	s.Equal(domain.UserIDFromEmail("ada.lovelace@example.com").String(), resp.User.ID)

	cookie := sessionCookie(w)
	s.Require().NotNil(cookie)
	s.True(cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(cookie)
	w = s.serve(s.router, req)
	s.Require().Equal(http.StatusOK, w.Code)
	var session SessionResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&session))
	s.Equal(resp.User.ID, session.User.ID)

	req = httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.AddCookie(cookie)
	w = s.serve(s.router, req)
	s.Require().Equal(http.StatusOK, w.Code)
	cleared := sessionCookie(w)
	s.Require().NotNil(cleared)
	s.Less(cleared.MaxAge, 0)

	req = httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.AddCookie(cookie)
	s.Equal(http.StatusUnauthorized, s.serve(s.router, req).Code)
}

func (s *AuthHandlerSuite) TestSignInRejectsEmptyEmail() {
	w := s.serve(s.router, httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"email":"  "}`)))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "validation_error")
	s.Nil(sessionCookie(w))
}

func (s *AuthHandlerSuite) TestSignInRejectsMalformedEmail() {
	w := s.serve(s.router, httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"email":"not an email"}`)))
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *AuthHandlerSuite) TestSignOutWithoutSessionStillSucceeds() {
	w := s.serve(s.router, httptest.NewRequest(http.MethodPost, "/auth/signout", nil))
	s.Equal(http.StatusOK, w.Code)
}

func (s *AuthHandlerSuite) TestOIDCFlow() {
	provider := &fakeProvider{identity: &oidc.Identity{Subject: "idp-1", Email: "Grace@Example.com"}}
	r := s.newRouter(WithProvider(provider))

	s.Run("email sign-in is not mounted", func() {
		w := s.serve(r, httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(`{"email":"a@example.com"}`)))
		s.Equal(http.StatusMethodNotAllowed, w.Code)
	})

	s.Run("login then callback issues a session", func() {
		w := s.serve(r, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
		s.Require().Equal(http.StatusFound, w.Code)
		loc, err := url.Parse(w.Header().Get("Location"))
		s.Require().NoError(err)
		state := loc.Query().Get("state")
		s.Require().NotEmpty(state)

		var flowCookie *http.Cookie
		for _, c := range w.Result().Cookies() {
			if c.Name == oidcCookieName {
				flowCookie = c
			}
		}
		s.Require().NotNil(flowCookie)

		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=good-code&state="+state, nil)
		req.AddCookie(flowCookie)
		w = s.serve(r, req)
		s.Require().Equal(http.StatusSeeOther, w.Code)
		s.Equal("/", w.Header().Get("Location"))
		s.Equal(loc.Query().Get("nonce"), provider.gotNonce)

		cookie := sessionCookie(w)
		s.Require().NotNil(cookie)
		claims, err := s.tokens.Validate(cookie.Value)
		s.Require().NoError(err)
		s.Equal("grace@example.com", claims.Email)
		s.Equal(domain.UserIDFromEmail("grace@example.com").String(), claims.Subject)
	})

	s.Run("state mismatch is rejected", func() {
		req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=good-code&state=forged", nil)
		req.AddCookie(&http.Cookie{Name: oidcCookieName, Value: "real.nonce"})
		w := s.serve(r, req)
		s.Equal(http.StatusUnauthorized, w.Code)
		s.Nil(sessionCookie(w))
	})

	s.Run("missing flow cookie is rejected", func() {
		w := s.serve(r, httptest.NewRequest(http.MethodGet, "/auth/callback?code=good-code&state=x", nil))
		s.Equal(http.StatusUnauthorized, w.Code)
	})

	s.Run("browser sign-in page redirects to login", func() {
		req := httptest.NewRequest(http.MethodGet, "/auth/signin", nil)
		req.Header.Set("Accept", "text/html")
		w := s.serve(r, req)
		s.Equal(http.StatusFound, w.Code)
		s.Equal("/auth/login", w.Header().Get("Location"))
	})
}
