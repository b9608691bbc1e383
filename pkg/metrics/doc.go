// Package metrics exposes Prometheus instrumentation for the search
// pipeline on a dedicated scrape endpoint. It owns its own registry so the
// default global registry never leaks collectors into this service.
package metrics
