package backend

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/Megloux/mosaic/pkg/errors"
)

func signKey(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":  "supabase",
		"role": role,
	})
	s, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func testConfig(t *testing.T) *Config {
	return &Config{
		URL:            "https://project.supabase.co",
		AnonKey:        signKey(t, "anon"),
		ServiceRoleKey: signKey(t, "service_role"),
		Timeout:        time.Second,
	}
}

func TestKeyScope(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want Scope
	}{
		{"legacy anon", signKey(t, "anon"), ScopeAnon},
		{"legacy service", signKey(t, "service_role"), ScopeServiceRole},
		{"legacy other role", signKey(t, "authenticated"), scopeUnknown},
		{"publishable", "sb_publishable_abc123", ScopeAnon},
		{"secret", "sb_secret_abc123", ScopeServiceRole},
		{"garbage", "not-a-key", scopeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeyScope(tt.key); got != tt.want {
				t.Errorf("KeyScope() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewClient_SelectsCredentialByContext(t *testing.T) {
	cfg := testConfig(t)

	browser, err := NewClient(ContextBrowser, cfg)
	if err != nil {
		t.Fatalf("browser client: %v", err)
	}
	if browser.Scope() != ScopeAnon {
		t.Errorf("browser client scope = %q, want anon", browser.Scope())
	}
	if got := browser.httpClient.Transport.(*KeyTransport).Key; got != cfg.AnonKey {
		t.Error("browser client is not using the anon key")
	}

	server, err := NewClient(ContextServer, cfg)
	if err != nil {
		t.Fatalf("server client: %v", err)
	}
	if server.Scope() != ScopeServiceRole {
		t.Errorf("server client scope = %q, want service_role", server.Scope())
	}
}

func TestNewClient_BrowserNeverReadsServiceRoleKey(t *testing.T) {
	// Without the anon key the browser must fail rather than fall back.
	cfg := testConfig(t)
	cfg.AnonKey = ""

	_, err := NewClient(ContextBrowser, cfg)
	if !errors.Is(err, apperrors.ErrBackendConfigInvalid) {
		t.Errorf("expected ErrBackendConfigInvalid, got %v", err)
	}
}

func TestNewClient_RefusesServiceKeyAsAnon(t *testing.T) {
	cfg := testConfig(t)
	cfg.AnonKey = cfg.ServiceRoleKey

	_, err := NewClient(ContextBrowser, cfg)
	if !errors.Is(err, apperrors.ErrCredentialScope) {
		t.Errorf("expected ErrCredentialScope, got %v", err)
	}

	cfg.AnonKey = "sb_secret_leaked"
	_, err = NewClient(ContextBrowser, cfg)
	if !errors.Is(err, apperrors.ErrCredentialScope) {
		t.Errorf("expected ErrCredentialScope for sb_secret key, got %v", err)
	}
}

func TestNewAdminClient(t *testing.T) {
	cfg := testConfig(t)

	t.Run("Browser refused", func(t *testing.T) {
		c, err := NewAdminClient(ContextBrowser, cfg)
		if !errors.Is(err, apperrors.ErrCredentialScope) {
			t.Errorf("expected ErrCredentialScope, got %v", err)
		}
		if c != nil {
			t.Error("expected no client")
		}
	})

	t.Run("Server allowed", func(t *testing.T) {
		c, err := NewAdminClient(ContextServer, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Scope() != ScopeServiceRole {
			t.Errorf("scope = %q", c.Scope())
		}
	})

	t.Run("Anon key in service slot", func(t *testing.T) {
		bad := testConfig(t)
		bad.ServiceRoleKey = bad.AnonKey
		if _, err := NewAdminClient(ContextServer, bad); !errors.Is(err, apperrors.ErrBackendConfigInvalid) {
			t.Errorf("expected ErrBackendConfigInvalid, got %v", err)
		}
	})
}

func TestNewClient_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil", nil},
		{"no url", &Config{AnonKey: "k"}},
		{"relative url", &Config{URL: "project.supabase.co", AnonKey: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(ContextBrowser, tt.cfg); !errors.Is(err, apperrors.ErrBackendConfigInvalid) {
				t.Errorf("expected ErrBackendConfigInvalid, got %v", err)
			}
		})
	}

	if _, err := NewClient(ExecutionContext(9), testConfig(t)); err == nil {
		t.Error("expected error for unknown context")
	}
}

func TestLoadConfig(t *testing.T) {
	keys := []string{
		"SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL",
		"SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY",
		"SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_TIMEOUT",
	}
	orig := map[string]string{}
	for _, k := range keys {
		orig[k] = os.Getenv(k)
	}
	defer func() {
		for k, v := range orig {
			os.Setenv(k, v)
		}
	}()

	t.Run("Public fallbacks", func(t *testing.T) {
		for _, k := range keys {
			os.Unsetenv(k)
		}
		os.Setenv("NEXT_PUBLIC_SUPABASE_URL", "https://pub.supabase.co")
		os.Setenv("NEXT_PUBLIC_SUPABASE_ANON_KEY", "anon")

		cfg := LoadConfig()
		if cfg.URL != "https://pub.supabase.co" || cfg.AnonKey != "anon" {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.Timeout != defaultTimeout {
			t.Errorf("expected default timeout, got %v", cfg.Timeout)
		}
	})

	t.Run("Overrides", func(t *testing.T) {
		os.Setenv("SUPABASE_URL", "https://srv.supabase.co")
		os.Setenv("SUPABASE_SERVICE_ROLE_KEY", "svc")
		os.Setenv("SUPABASE_TIMEOUT", "5s")

		cfg := LoadConfig()
		if cfg.URL != "https://srv.supabase.co" {
			t.Errorf("got URL %q", cfg.URL)
		}
		if cfg.ServiceRoleKey != "svc" {
			t.Errorf("got service key %q", cfg.ServiceRoleKey)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("got timeout %v", cfg.Timeout)
		}
	})
}
