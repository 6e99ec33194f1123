package handler

import (
	"strings"

	dErrors "stackwise/pkg/domain-errors"
	"stackwise/pkg/email"
)

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Email string `json:"email"`

	normalized string
}

func (r *SignInRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *SignInRequest) Validate() error {
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	addr, ok := email.Normalize(r.Email)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	r.normalized = addr
	return nil
}

// NormalizedEmail is populated by Validate.
func (r *SignInRequest) NormalizedEmail() string {
	return r.normalized
}
