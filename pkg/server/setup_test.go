package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gutensearch/gutensearch/pkg/books"
	"github.com/gutensearch/gutensearch/pkg/search"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, err error, fields ...map[string]interface{})  {}
func (nopLogger) Debug(msg string, err error, fields ...map[string]interface{}) {}
func (nopLogger) Warn(msg string, err error, fields ...map[string]interface{})  {}
func (nopLogger) Error(msg string, err error, fields ...map[string]interface{}) {}
func (nopLogger) Fatal(msg string, err error, fields ...map[string]interface{}) {}

type fakeSearcher struct {
	results   []books.SimilarityResult
	searchErr error
	seedErr   error
	lastQuery string
	seedCount int
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]books.SimilarityResult, error) {
	f.lastQuery = query
	return f.results, f.searchErr
}

func (f *fakeSearcher) Seed(ctx context.Context, count int) (*search.SeedResult, error) {
	f.seedCount = count
	if f.seedErr != nil {
		return nil, f.seedErr
	}
	return &search.SeedResult{Requested: count, Fetched: count, Upserted: count}, nil
}

func (f *fakeSearcher) EmbedAll(ctx context.Context) (*search.EmbedAllResult, error) {
	return &search.EmbedAllResult{Processed: 3}, nil
}

type fakeContent struct {
	content    string
	contentErr error
	summary    string
	lastID     int64
}

func (f *fakeContent) Content(ctx context.Context, id int64) (string, error) {
	f.lastID = id
	return f.content, f.contentErr
}

func (f *fakeContent) Summary(ctx context.Context, id int64) string {
	f.lastID = id
	return f.summary
}

func newTestServer(searcher Searcher, catalog ContentFetcher) *httptest.Server {
	s := NewServer(Config{Address: ":0"}, searcher, catalog, nopLogger{})
	return httptest.NewServer(s.httpServer.Handler)
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func getStatus(t *testing.T, url string) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleSearchReturnsResults(t *testing.T) {
	searcher := &fakeSearcher{results: []books.SimilarityResult{
		{Book: books.Book{GutenbergID: 1533, Title: "Macbeth", Author: "Shakespeare, William"}, Similarity: 0.42},
	}}
	ts := newTestServer(searcher, &fakeContent{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/search", `{"query":"British king"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "British king", searcher.lastQuery)

	var body struct {
		Results []map[string]any `json:"results"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "Macbeth", body.Results[0]["title"])
	assert.InDelta(t, 0.42, body.Results[0]["similarity"], 1e-9)
	assert.NotContains(t, body.Results[0], "embedding")
}

func TestHandleSearchEmptyResultsIsNotAnError(t *testing.T) {
	ts := newTestServer(&fakeSearcher{}, &fakeContent{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/search", `{"query":"obscure topic"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Results []any `json:"results"`
		Count   int   `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body.Results, "results must be an empty array, not null")
	assert.Zero(t, body.Count)
}

func TestHandleSearchInvalidQuery(t *testing.T) {
	searcher := &fakeSearcher{searchErr: search.ErrInvalidQuery}
	ts := newTestServer(searcher, &fakeContent{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/search", `{"query":""}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Error)
}

func TestHandleSearchMalformedBody(t *testing.T) {
	ts := newTestServer(&fakeSearcher{}, &fakeContent{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/search", `{"query":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleSearchPipelineFailure(t *testing.T) {
	searcher := &fakeSearcher{searchErr: errors.New("database down")}
	ts := newTestServer(searcher, &fakeContent{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/search", `{"query":"anything"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandleContent(t *testing.T) {
	catalog := &fakeContent{content: "It is a truth universally acknowledged"}
	ts := newTestServer(&fakeSearcher{}, catalog)
	defer ts.Close()

	resp := getStatus(t, ts.URL+"/api/books/1342/content")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(1342), catalog.lastID)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
}

func TestHandleContentUnavailable(t *testing.T) {
	catalog := &fakeContent{contentErr: errors.New("no plain text format")}
	ts := newTestServer(&fakeSearcher{}, catalog)
	defer ts.Close()

	resp := getStatus(t, ts.URL+"/api/books/99/content")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleContentBadID(t *testing.T) {
	ts := newTestServer(&fakeSearcher{}, &fakeContent{})
	defer ts.Close()

	for _, path := range []string{"/api/books/abc/content", "/api/books/-5/content", "/api/books/0/content"} {
		resp := getStatus(t, ts.URL+path)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestHandleSummaryAlwaysSucceeds(t *testing.T) {
	ts := newTestServer(&fakeSearcher{}, &fakeContent{summary: ""})
	defer ts.Close()

	resp := getStatus(t, ts.URL+"/api/books/84/summary")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		GutenbergID int64  `json:"gutenbergId"`
		Summary     string `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(84), body.GutenbergID)
	assert.Empty(t, body.Summary)
}

func TestHandleSeedDefaultsCount(t *testing.T) {
	searcher := &fakeSearcher{}
	ts := newTestServer(searcher, &fakeContent{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/admin/seed", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 32, searcher.seedCount)
}

func TestHandleSeedCustomCount(t *testing.T) {
	searcher := &fakeSearcher{}
	ts := newTestServer(searcher, &fakeContent{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/admin/seed?count=100", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100, searcher.seedCount)
}

func TestHandleSeedRejectsBadCount(t *testing.T) {
	ts := newTestServer(&fakeSearcher{}, &fakeContent{})
	defer ts.Close()

	for _, q := range []string{"?count=zero", "?count=-1", "?count=0"} {
		resp := postJSON(t, ts.URL+"/api/admin/seed"+q, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestHandleEmbedAll(t *testing.T) {
	ts := newTestServer(&fakeSearcher{}, &fakeContent{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/admin/embed-all", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Processed int `json:"processed"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 3, body.Processed)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(&fakeSearcher{}, &fakeContent{})
	defer ts.Close()

	resp := getStatus(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(&fakeSearcher{}, &fakeContent{})
	defer ts.Close()

	resp := getStatus(t, ts.URL+"/api/search")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
