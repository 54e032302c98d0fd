package backend

import (
	"os"
	"time"
)

// Config holds the Supabase endpoint and credentials.
type Config struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	Timeout        time.Duration
}

const defaultTimeout = 30 * time.Second

// LoadConfig reads backend configuration from environment variables. The
// NEXT_PUBLIC_ names are accepted so the same .env file serves the web app.
func LoadConfig() *Config {
	timeout := defaultTimeout
	if v := os.Getenv("SUPABASE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}

	return &Config{
		URL:            firstEnv("SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"),
		AnonKey:        firstEnv("SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"),
		ServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		Timeout:        timeout,
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
