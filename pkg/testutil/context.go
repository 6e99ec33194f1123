package testutil

import (
	"net/http"

	"stackwise/pkg/requestcontext"
)

// WithIdentity puts a signed-in reviewer on the request context, as the
// session middleware would.
func WithIdentity(req *http.Request, userID, email string) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), userID, email))
}

