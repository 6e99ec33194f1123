package token

import (
	authmw "stackwise/pkg/platform/middleware/auth"
)

// ToMiddlewareClaims converts session claims for the auth middleware.
func ToMiddlewareClaims(c *Claims) *authmw.SessionClaims {
	out := &authmw.SessionClaims{
		UserID: c.Subject,
		Email:  c.Email,
		JTI:    c.ID,
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}

// MiddlewareAdapter lets the auth middleware validate tokens without
// importing jwt.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateSession(tokenString string) (*authmw.SessionClaims, error) {
	claims, err := a.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
