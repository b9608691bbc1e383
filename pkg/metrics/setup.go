package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry, the scrape endpoint and the domain
// instruments of the search pipeline.
type Metrics struct {
	Server      *http.Server
	Registry    *prometheus.Registry
	serviceName string

	// SearchesTotal counts search requests by terminal status
	// ("ok", "invalid_query", "error").
	SearchesTotal *prometheus.CounterVec

	// SearchDuration observes end-to-end search pipeline latency in seconds.
	SearchDuration *prometheus.HistogramVec

	// EmbeddingsGenerated counts embedding vectors written to the store,
	// labeled by the code path that produced them ("coverage", "replenish",
	// "backfill").
	EmbeddingsGenerated *prometheus.CounterVec

	// CatalogRecordsFetched counts catalog records fetched during
	// seeding and replenishment.
	CatalogRecordsFetched prometheus.Counter
}

func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	searchesTotal := createCounterVec(
		"gutensearch_searches_total",
		"Search requests by terminal status.",
		[]string{"status"},
	)
	searchDuration := createHistogramVec(
		"gutensearch_search_duration_seconds",
		"End-to-end search pipeline latency.",
		[]string{"replenished"},
		prometheus.DefBuckets,
	)
	embeddingsGenerated := createCounterVec(
		"gutensearch_embeddings_generated_total",
		"Embedding vectors computed and persisted, by code path.",
		[]string{"path"},
	)
	catalogRecordsFetched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gutensearch_catalog_records_fetched_total",
		Help: "Catalog records fetched from the upstream catalog.",
	})

	wrappedRegistry.MustRegister(searchesTotal, searchDuration, embeddingsGenerated, catalogRecordsFetched)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	server := &http.Server{
		Addr:    cfg.Address,
		Handler: handler,
	}

	return &Metrics{
		Server:                server,
		Registry:              registry,
		serviceName:           cfg.ServiceName,
		SearchesTotal:         searchesTotal,
		SearchDuration:        searchDuration,
		EmbeddingsGenerated:   embeddingsGenerated,
		CatalogRecordsFetched: catalogRecordsFetched,
	}
}
