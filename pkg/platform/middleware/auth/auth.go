// Package auth gates routes on the session cookie.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	request "stackwise/pkg/platform/middleware/request"
	"stackwise/pkg/requestcontext"
)

const (
	// CookieName holds the signed session token.
	CookieName = "stackwise_session"
	// SignInPath is where browsers are sent when unauthenticated.
	SignInPath = "/auth/signin"
)

// SessionValidator validates a session token.
type SessionValidator interface {
	ValidateSession(tokenString string) (*SessionClaims, error)
}

// RevocationChecker reports whether a session jti was signed out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SessionClaims are the claims the middleware needs from a session token.
type SessionClaims struct {
	UserID    string
	Email     string
	JTI       string
	ExpiresAt time.Time
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// wantsHTML reports whether the client is a browser navigating to a page.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func deny(w http.ResponseWriter, r *http.Request, desc string) {
	if wantsHTML(r) {
		http.Redirect(w, r, SignInPath, http.StatusSeeOther)
		return
	}
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", desc)
}

// RequireAuth admits requests carrying a valid, unrevoked session cookie and
// puts the identity on the request context. Browsers are redirected to the
// sign-in page; API clients get 401.
func RequireAuth(validator SessionValidator, revocations RevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			cookie, err := r.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				logger.DebugContext(ctx, "unauthorized access - missing session", "request_id", requestID)
				deny(w, r, "Missing session")
				return
			}

			claims, err := validator.ValidateSession(cookie.Value)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid session",
					"error", err,
					"request_id", requestID,
				)
				deny(w, r, "Invalid or expired session")
				return
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check session revocation",
						"error", err,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to validate session")
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - session revoked",
						"jti", claims.JTI,
						"request_id", requestID,
					)
					deny(w, r, "Session has been signed out")
					return
				}
			}

			ctx = requestcontext.WithIdentity(ctx, claims.UserID, claims.Email)
			ctx = requestcontext.WithSessionID(ctx, claims.JTI)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
