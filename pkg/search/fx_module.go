package search

import (
	"go.uber.org/fx"

	"github.com/gutensearch/gutensearch/pkg/books"
	"github.com/gutensearch/gutensearch/pkg/catalog"
	"github.com/gutensearch/gutensearch/pkg/embedding"
	"github.com/gutensearch/gutensearch/pkg/metrics"
	"github.com/gutensearch/gutensearch/pkg/tracer"
)

// FXModule wires the search orchestrator into Fx, binding the concrete
// clients to the orchestrator's collaborator interfaces.
var FXModule = fx.Module("search",
	fx.Provide(
		NewConfig,
		newServiceFromClients,
	),
)

func newServiceFromClients(
	embedder *embedding.Client,
	store *books.Store,
	fetcher *catalog.Client,
	m *metrics.Metrics,
	t *tracer.Tracer,
	logger Logger,
	cfg Config,
) *Service {
	return NewService(embedder, store, fetcher, m, t, logger, cfg)
}
