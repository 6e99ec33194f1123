package handler

import "time"

type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type SignInResponse struct {
	Success   bool        `json:"success"`
	User      SessionUser `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type SignOutResponse struct {
	Success bool `json:"success"`
}

type SessionResponse struct {
	User SessionUser `json:"user"`
}

// SignInInfo tells a client how to sign in.
type SignInInfo struct {
	Mode     string `json:"mode"`
	LoginURL string `json:"loginUrl,omitempty"`
}
