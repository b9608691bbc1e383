package catalog

import (
	"os"
	"strconv"
)

type Config struct {
	// BaseURL of the Gutendex API.
	BaseURL string

	// HTTPTimeoutS is the http timeout in seconds (default 30).
	HTTPTimeoutS int

	// MaxContentBytes caps how much of a book's plain text is proxied.
	MaxContentBytes int64
}

// NewConfig reads from environment (no extra deps).
func NewConfig() *Config {
	timeout := 30
	if v := os.Getenv("CATALOG_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = n
		}
	}
	return &Config{
		BaseURL:         getenvDefault("CATALOG_BASE_URL", "https://gutendex.com"),
		HTTPTimeoutS:    timeout,
		MaxContentBytes: 2 << 20,
	}
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
