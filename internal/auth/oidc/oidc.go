// Package oidc signs users in through an external OpenID Connect provider.
package oidc

import (
	"context"
	"errors"
	"fmt"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"stackwise/internal/platform/config"
	dErrors "stackwise/pkg/domain-errors"
)

// Identity is the verified subject of an ID token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// exchanger is the slice of oauth2.Config the provider uses.
type exchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

type idTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*gooidc.IDToken, error)
}

// Provider runs the authorization code flow against one issuer.
type Provider struct {
	oauth    exchanger
	verifier idTokenVerifier
}

// NewProvider discovers the issuer's endpoints and keys.
func NewProvider(ctx context.Context, cfg config.AuthConfig) (*Provider, error) {
	p, err := gooidc.NewProvider(ctx, cfg.OIDCIssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover oidc issuer: %w", err)
	}
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     p.Endpoint(),
		Scopes:       []string{gooidc.ScopeOpenID, "email", "profile"},
	}
	return &Provider{
		oauth:    oauthCfg,
		verifier: p.Verifier(&gooidc.Config{ClientID: cfg.OIDCClientID}),
	}, nil
}

// AuthCodeURL is where the browser is sent to sign in.
func (p *Provider) AuthCodeURL(state, nonce string) string {
	return p.oauth.AuthCodeURL(state, gooidc.Nonce(nonce))
}

// Exchange trades the callback code for a verified identity. The ID token
// must carry the nonce issued with the login redirect and an email claim.
func (p *Provider) Exchange(ctx context.Context, code, nonce string) (*Identity, error) {
	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "authorization code rejected")
	}
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "provider returned no id_token")
	}
	idToken, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "id_token verification failed")
	}
	if idToken.Nonce != nonce {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "id_token nonce mismatch")
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "unreadable id_token claims")
	}
	if claims.Email == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "id_token has no email")
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "email not verified")
	}
	return &Identity{Subject: idToken.Subject, Email: claims.Email, Name: claims.Name}, nil
}

var errNotConfigured = errors.New("oidc provider not configured")

// Validate reports missing issuer settings before discovery is attempted.
func Validate(cfg config.AuthConfig) error {
	if cfg.OIDCIssuerURL == "" || cfg.OIDCClientID == "" || cfg.OIDCClientSecret == "" || cfg.OIDCRedirectURL == "" {
		return errNotConfigured
	}
	return nil
}
