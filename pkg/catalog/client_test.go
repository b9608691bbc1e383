package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, err error, fields ...map[string]interface{})  {}
func (nopLogger) Debug(msg string, err error, fields ...map[string]interface{}) {}
func (nopLogger) Warn(msg string, err error, fields ...map[string]interface{})  {}
func (nopLogger) Error(msg string, err error, fields ...map[string]interface{}) {}
func (nopLogger) Fatal(msg string, err error, fields ...map[string]interface{}) {}

// fakeCatalog serves a Gutendex-shaped paginated listing plus book details.
type fakeCatalog struct {
	pages     map[int][]Record
	failPages map[int]bool
	requests  []string
}

func (f *fakeCatalog) handler(t *testing.T, baseURL *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.URL.String())

		if r.URL.Path == "/books" {
			pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
			if pageNum == 0 {
				pageNum = 1
			}
			if f.failPages[pageNum] {
				http.Error(w, "upstream down", http.StatusBadGateway)
				return
			}
			records, ok := f.pages[pageNum]
			if !ok {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}

			var next *string
			if _, hasNext := f.pages[pageNum+1]; hasNext {
				url := fmt.Sprintf("%s/books?page=%d", *baseURL, pageNum+1)
				next = &url
			}
			json.NewEncoder(w).Encode(page{ //nolint:errcheck
				Count:   len(records),
				Next:    next,
				Results: records,
			})
			return
		}

		// Detail endpoint: /books/{id}
		var id int64
		if _, err := fmt.Sscanf(r.URL.Path, "/books/%d", &id); err == nil {
			for _, records := range f.pages {
				for _, rec := range records {
					if rec.ID == id {
						json.NewEncoder(w).Encode(rec) //nolint:errcheck
						return
					}
				}
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, f *fakeCatalog) *Client {
	t.Helper()

	var baseURL string
	server := httptest.NewServer(f.handler(t, &baseURL))
	baseURL = server.URL
	t.Cleanup(server.Close)

	return NewClient(&Config{
		BaseURL:         server.URL,
		HTTPTimeoutS:    5,
		MaxContentBytes: 1 << 20,
	}, nopLogger{})
}

func rec(id int64, title string) Record {
	return Record{ID: id, Title: title, Authors: []Author{{Name: "Author"}}}
}

func TestFetchNewCollectsAcrossPages(t *testing.T) {
	f := &fakeCatalog{pages: map[int][]Record{
		1: {rec(1, "One"), rec(2, "Two")},
		2: {rec(3, "Three"), rec(4, "Four")},
	}}
	c := newTestClient(t, f)

	records, err := c.FetchNew(context.Background(), 3, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(3), records[2].ID)
	assert.Contains(t, f.requests, "/books?page=2")
}

func TestFetchNewSkipsFullyKnownPage(t *testing.T) {
	f := &fakeCatalog{pages: map[int][]Record{
		1: {rec(1, "One"), rec(2, "Two")},
		2: {rec(3, "Three")},
	}}
	c := newTestClient(t, f)

	known := map[int64]struct{}{1: {}, 2: {}}

	records, err := c.FetchNew(context.Background(), 1, known)
	require.NoError(t, err)

	// Page 1 contributes nothing; paging must advance to page 2 instead of
	// looping on the known records.
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].ID)
	assert.Contains(t, f.requests, "/books?page=1")
	assert.Contains(t, f.requests, "/books?page=2")
}

func TestFetchNewStopsWhenCatalogExhausted(t *testing.T) {
	f := &fakeCatalog{pages: map[int][]Record{
		1: {rec(1, "One")},
	}}
	c := newTestClient(t, f)

	records, err := c.FetchNew(context.Background(), 10, nil)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFetchNewReturnsPartialOnPageFailure(t *testing.T) {
	f := &fakeCatalog{
		pages: map[int][]Record{
			1: {rec(1, "One"), rec(2, "Two")},
			2: {rec(3, "Three")},
		},
		failPages: map[int]bool{2: true},
	}
	c := newTestClient(t, f)

	records, err := c.FetchNew(context.Background(), 5, nil)
	require.Error(t, err)
	assert.Len(t, records, 2, "page 1 results survive the page 2 failure")
}

func TestFetchNewZeroWant(t *testing.T) {
	f := &fakeCatalog{pages: map[int][]Record{1: {rec(1, "One")}}}
	c := newTestClient(t, f)

	records, err := c.FetchNew(context.Background(), 0, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Empty(t, f.requests, "want=0 must not hit the catalog")
}

func TestSummaryGracefulOnUpstreamFailure(t *testing.T) {
	f := &fakeCatalog{pages: map[int][]Record{}}
	c := newTestClient(t, f)

	assert.Equal(t, "", c.Summary(context.Background(), 99))
}

func TestSummaryReturnsFirst(t *testing.T) {
	record := rec(1533, "Macbeth")
	record.Summaries = []string{"A Scottish lord murders his king.", "second"}
	f := &fakeCatalog{pages: map[int][]Record{1: {record}}}
	c := newTestClient(t, f)

	assert.Equal(t, "A Scottish lord murders his king.", c.Summary(context.Background(), 1533))
}

func TestPlainTextURL(t *testing.T) {
	tests := map[string]struct {
		formats  map[string]string
		expected string
	}{
		"prefers utf-8": {
			formats: map[string]string{
				"text/plain; charset=us-ascii": "http://example.com/ascii.txt",
				"text/plain; charset=utf-8":    "http://example.com/utf8.txt",
			},
			expected: "http://example.com/utf8.txt",
		},
		"skips zip": {
			formats: map[string]string{
				"text/plain; charset=utf-8": "http://example.com/book.zip",
				"text/plain":                "http://example.com/book.txt",
			},
			expected: "http://example.com/book.txt",
		},
		"no plain text": {
			formats: map[string]string{
				"application/epub+zip": "http://example.com/book.epub",
			},
			expected: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.expected, plainTextURL(tt.formats))
		})
	}
}

func TestContent(t *testing.T) {
	var baseURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/books/1342", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Record{ //nolint:errcheck
			ID:    1342,
			Title: "Pride and Prejudice",
			Formats: map[string]string{
				"text/plain; charset=utf-8": baseURL + "/files/1342.txt",
			},
		})
	})
	mux.HandleFunc("/files/1342.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "It is a truth universally acknowledged")
	})

	server := httptest.NewServer(mux)
	baseURL = server.URL
	t.Cleanup(server.Close)

	c := NewClient(&Config{BaseURL: server.URL, HTTPTimeoutS: 5, MaxContentBytes: 1 << 20}, nopLogger{})

	content, err := c.Content(context.Background(), 1342)
	require.NoError(t, err)
	assert.Equal(t, "It is a truth universally acknowledged", content)
}

func TestContentNoPlainText(t *testing.T) {
	f := &fakeCatalog{pages: map[int][]Record{1: {rec(5, "Image Only")}}}
	c := newTestClient(t, f)

	_, err := c.Content(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no plain text format")
}

func TestPrimaryAuthor(t *testing.T) {
	assert.Equal(t, "Unknown", Record{}.PrimaryAuthor())
	assert.Equal(t, "Austen, Jane", Record{Authors: []Author{{Name: "Austen, Jane"}}}.PrimaryAuthor())
}
