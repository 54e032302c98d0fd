// Package backend constructs Supabase clients with the credential that fits
// the caller's execution context.
//
// The service-role key bypasses row level security. It is only ever read when
// the caller declares ContextServer, and an anon key that turns out to carry
// the service role is refused rather than shipped to a browser.
package backend

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

// ExecutionContext says where the client will run.
type ExecutionContext int

const (
	ContextServer ExecutionContext = iota
	ContextBrowser
)

func (c ExecutionContext) String() string {
	switch c {
	case ContextServer:
		return "server"
	case ContextBrowser:
		return "browser"
	default:
		return "unknown"
	}
}

// Scope is the privilege level of a client's credential.
type Scope string

const (
	ScopeAnon        Scope = "anon"
	ScopeServiceRole Scope = "service_role"
	scopeUnknown     Scope = ""
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client. Its transport is wrapped so every
// request still carries the credential.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient returns the context-sensitive client: anon credential in the
// browser, service-role credential on the server.
func NewClient(execCtx ExecutionContext, cfg *Config, opts ...ClientOption) (*Client, error) {
	switch execCtx {
	case ContextBrowser:
		return newScopedClient(cfg, ScopeAnon, opts)
	case ContextServer:
		return newScopedClient(cfg, ScopeServiceRole, opts)
	default:
		return nil, apperrors.ErrBackendConfigInvalid.WithMessage("unknown execution context")
	}
}

// NewAdminClient returns a service-role client for trusted server-side jobs
// such as data imports. It refuses to build one for the browser.
func NewAdminClient(execCtx ExecutionContext, cfg *Config, opts ...ClientOption) (*Client, error) {
	if execCtx != ContextServer {
		return nil, apperrors.ErrCredentialScope.
			WithMessage("admin client requested outside a server context").
			WithMetadata("context", execCtx.String())
	}
	return newScopedClient(cfg, ScopeServiceRole, opts)
}

func newScopedClient(cfg *Config, scope Scope, opts []ClientOption) (*Client, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, apperrors.ErrBackendConfigInvalid.WithMessage("missing Supabase URL")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, apperrors.ErrBackendConfigInvalid.WithMessage("invalid Supabase URL").WithCause(err)
	}

	var key string
	switch scope {
	case ScopeAnon:
		key = cfg.AnonKey
		if key == "" {
			return nil, apperrors.ErrBackendConfigInvalid.WithMessage("missing anon key")
		}
		if KeyScope(key) == ScopeServiceRole {
			return nil, apperrors.ErrCredentialScope.WithMessage("anon key carries the service_role claim")
		}
	case ScopeServiceRole:
		key = cfg.ServiceRoleKey
		if key == "" {
			return nil, apperrors.ErrBackendConfigInvalid.WithMessage("missing service role key")
		}
		if KeyScope(key) == ScopeAnon {
			return nil, apperrors.ErrBackendConfigInvalid.WithMessage("service role key carries the anon claim")
		}
	}

	c := &Client{
		baseURL: base,
		scope:   scope,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	// Copy so a caller-supplied client is not mutated.
	hc := *c.httpClient
	hc.Transport = &KeyTransport{Key: key, Base: hc.Transport}
	c.httpClient = &hc
	return c, nil
}

// KeyScope classifies a Supabase API key. Legacy keys are JWTs whose role
// claim names the scope; newer keys use sb_publishable_ and sb_secret_
// prefixes. Unrecognised keys return the empty scope.
func KeyScope(key string) Scope {
	switch {
	case strings.HasPrefix(key, "sb_secret_"):
		return ScopeServiceRole
	case strings.HasPrefix(key, "sb_publishable_"):
		return ScopeAnon
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return scopeUnknown
	}
	role, _ := claims["role"].(string)
	switch Scope(role) {
	case ScopeAnon:
		return ScopeAnon
	case ScopeServiceRole:
		return ScopeServiceRole
	}
	return scopeUnknown
}
