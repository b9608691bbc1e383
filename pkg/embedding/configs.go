package embedding

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// API key for the embedding provider. Required.
	APIKey string

	// Endpoint is the OpenAI-compatible embeddings endpoint.
	Endpoint string

	// Model selects the embedding model. The default produces
	// Dimension-sized vectors; changing it requires a matching column size.
	Model string

	// HTTPTimeoutS is the http timeout in seconds (default 30).
	HTTPTimeoutS int
}

// NewConfig reads from environment (no extra deps).
func NewConfig() *Config {
	timeout := 30
	if v := os.Getenv("EMBEDDING_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = n
		}
	}
	return &Config{
		APIKey:       os.Getenv("EMBEDDING_API_KEY"),
		Endpoint:     getenvDefault("EMBEDDING_ENDPOINT", "https://api.openai.com/v1/embeddings"),
		Model:        getenvDefault("EMBEDDING_MODEL", "text-embedding-ada-002"),
		HTTPTimeoutS: timeout,
	}
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("embedding provider requires EMBEDDING_API_KEY")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("embedding provider requires EMBEDDING_ENDPOINT")
	}
	return nil
}
