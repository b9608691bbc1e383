package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gutensearch/gutensearch/pkg/books"
	"github.com/gutensearch/gutensearch/pkg/embedding"
	"github.com/gutensearch/gutensearch/pkg/search"
)

// Logger defines the interface for logging operations in the server package.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Searcher is the slice of the orchestrator the HTTP layer needs.
type Searcher interface {
	Search(ctx context.Context, query string) ([]books.SimilarityResult, error)
	Seed(ctx context.Context, count int) (*search.SeedResult, error)
	EmbedAll(ctx context.Context) (*search.EmbedAllResult, error)
}

// ContentFetcher proxies book content and summaries from the catalog.
type ContentFetcher interface {
	Content(ctx context.Context, id int64) (string, error)
	Summary(ctx context.Context, id int64) string
}

// Server is the HTTP API of the service.
type Server struct {
	httpServer *http.Server
	searcher   Searcher
	catalog    ContentFetcher
	logger     Logger
}

// NewServer builds the API server and its routes.
func NewServer(cfg Config, searcher Searcher, catalog ContentFetcher, logger Logger) *Server {
	s := &Server{
		searcher: searcher,
		catalog:  catalog,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/books/{id}/content", s.handleContent)
	mux.HandleFunc("GET /api/books/{id}/summary", s.handleSummary)
	mux.HandleFunc("POST /api/admin/seed", s.handleSeed)
	mux.HandleFunc("POST /api/admin/embed-all", s.handleEmbedAll)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Results []books.SimilarityResult `json:"results"`
	Count   int                      `json:"count"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be JSON with a query field")
		return
	}

	results, err := s.searcher.Search(r.Context(), req.Query)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrInvalidQuery), errors.Is(err, embedding.ErrEmptyText):
			s.writeError(w, http.StatusBadRequest, "query must not be empty")
		default:
			s.logger.Error("search request failed", err, map[string]interface{}{"query": req.Query})
			s.writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	if results == nil {
		results = []books.SimilarityResult{}
	}
	s.writeJSON(w, http.StatusOK, searchResponse{Results: results, Count: len(results)})
}

func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	content, err := s.catalog.Content(r.Context(), id)
	if err != nil {
		s.logger.Warn("content fetch failed", err, map[string]interface{}{"gutenberg_id": id})
		s.writeError(w, http.StatusNotFound, "book content not available")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

type summaryResponse struct {
	GutenbergID int64  `json:"gutenbergId"`
	Summary     string `json:"summary"`
}

// handleSummary degrades to an empty summary rather than surfacing upstream
// transient failures.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	summary := s.catalog.Summary(r.Context(), id)
	s.writeJSON(w, http.StatusOK, summaryResponse{GutenbergID: id, Summary: summary})
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	count := 32
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = n
	}

	result, err := s.searcher.Seed(r.Context(), count)
	if err != nil {
		s.logger.Error("seed request failed", err, nil)
		s.writeError(w, http.StatusInternalServerError, "seeding failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEmbedAll(w http.ResponseWriter, r *http.Request) {
	result, err := s.searcher.EmbedAll(r.Context())
	if err != nil {
		s.logger.Error("embed-all request failed", err, nil)
		s.writeError(w, http.StatusInternalServerError, "embedding backfill failed")
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, http.StatusBadRequest, "book id must be a positive integer")
		return 0, false
	}
	return id, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response encoding failed", err, nil)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}
