package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Logger defines the interface for logging operations in the catalog package.
//
//go:generate mockgen -source=client.go -destination=mock_logger.go -package=catalog
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Client fetches book metadata and content from the Gutendex catalog.
type Client struct {
	baseURL         string
	maxContentBytes int64
	httpClient      *http.Client
	logger          Logger
}

// NewClient constructs a catalog Client from configuration.
func NewClient(cfg *Config, logger Logger) *Client {
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		maxContentBytes: cfg.MaxContentBytes,
		httpClient:      &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutS) * time.Second},
		logger:          logger,
	}
}

// FetchNew pages through the catalog from the first page and collects up to
// want records whose ids are not in known. A page whose records are all
// already known contributes nothing and paging advances past it.
//
// A failed page request aborts the loop; whatever was collected so far is
// returned together with the error so callers can degrade gracefully.
func (c *Client) FetchNew(ctx context.Context, want int, known map[int64]struct{}) ([]Record, error) {
	if want <= 0 {
		return nil, nil
	}

	var collected []Record
	currentPage := 1

	for len(collected) < want {
		pg, err := c.fetchPage(ctx, currentPage)
		if err != nil {
			c.logger.Warn("catalog page fetch failed, returning partial result", err, map[string]interface{}{
				"page":      currentPage,
				"collected": len(collected),
			})
			return collected, err
		}

		for _, rec := range pg.Results {
			if _, ok := known[rec.ID]; ok {
				continue
			}
			collected = append(collected, rec)
			if len(collected) == want {
				break
			}
		}

		currentPage++
		if pg.Next == nil {
			// Catalog exhausted.
			break
		}
	}

	return collected, nil
}

// Book fetches a single catalog record by its id.
func (c *Client) Book(ctx context.Context, id int64) (*Record, error) {
	var rec Record
	if err := c.getJSON(ctx, fmt.Sprintf("%s/books/%d", c.baseURL, id), &rec); err != nil {
		return nil, fmt.Errorf("catalog: fetch book %d: %w", id, err)
	}
	return &rec, nil
}

// Content proxies the plain-text body of a book. It resolves a text/plain
// format URL from the record and streams at most MaxContentBytes of it.
func (c *Client) Content(ctx context.Context, id int64) (string, error) {
	rec, err := c.Book(ctx, id)
	if err != nil {
		return "", err
	}

	textURL := plainTextURL(rec.Formats)
	if textURL == "" {
		return "", fmt.Errorf("catalog: book %d has no plain text format", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, textURL, nil)
	if err != nil {
		return "", fmt.Errorf("catalog: build content request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("catalog: fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("catalog: http %d for %s", resp.StatusCode, textURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxContentBytes))
	if err != nil {
		return "", fmt.Errorf("catalog: read content: %w", err)
	}

	return string(body), nil
}

// Summary returns the first catalog summary for a book, or an empty string
// when none exists or the upstream call fails. Upstream failures degrade to
// an empty summary rather than an error.
func (c *Client) Summary(ctx context.Context, id int64) string {
	rec, err := c.Book(ctx, id)
	if err != nil {
		c.logger.Warn("summary fetch degraded to empty", err, map[string]interface{}{"gutenberg_id": id})
		return ""
	}
	if len(rec.Summaries) == 0 {
		return ""
	}
	return rec.Summaries[0]
}

func (c *Client) fetchPage(ctx context.Context, pageNum int) (*page, error) {
	var pg page
	url := fmt.Sprintf("%s/books?page=%d", c.baseURL, pageNum)
	if err := c.getJSON(ctx, url, &pg); err != nil {
		return nil, err
	}
	return &pg, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d for %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// plainTextURL picks a usable text/plain format, preferring unzipped bodies.
func plainTextURL(formats map[string]string) string {
	var fallback string
	for mime, url := range formats {
		if !strings.HasPrefix(mime, "text/plain") {
			continue
		}
		if strings.HasSuffix(url, ".zip") {
			continue
		}
		if mime == "text/plain; charset=utf-8" {
			return url
		}
		fallback = url
	}
	return fallback
}
