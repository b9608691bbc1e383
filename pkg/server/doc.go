// Package server exposes the HTTP API: the search endpoint, book content
// and summary proxies, the administrative seed and embed-all operations and
// a liveness probe. Responses use a JSON error envelope; client input
// problems map to 400 and pipeline failures to 500.
package server
