package main

import (
	"go.uber.org/fx"

	"github.com/gutensearch/gutensearch/pkg/books"
	"github.com/gutensearch/gutensearch/pkg/catalog"
	"github.com/gutensearch/gutensearch/pkg/embedding"
	"github.com/gutensearch/gutensearch/pkg/logger"
	"github.com/gutensearch/gutensearch/pkg/metrics"
	"github.com/gutensearch/gutensearch/pkg/postgres"
	"github.com/gutensearch/gutensearch/pkg/search"
	"github.com/gutensearch/gutensearch/pkg/server"
	"github.com/gutensearch/gutensearch/pkg/tracer"
)

func main() {
	app := fx.New(
		logger.FXModule,

		// Each package consumes logging through its own small interface;
		// bind them all to the shared zap-backed client.
		fx.Provide(
			func(l *logger.Logger) postgres.Logger { return l },
			func(l *logger.Logger) books.Logger { return l },
			func(l *logger.Logger) catalog.Logger { return l },
			func(l *logger.Logger) search.Logger { return l },
			func(l *logger.Logger) server.Logger { return l },
			func(l *logger.Logger) metrics.Logger { return l },
			func(l *logger.Logger) tracer.Logger { return l },
		),

		tracer.FXModule,
		metrics.FXModule,
		postgres.FXModule,
		books.FXModule,
		embedding.FXModule,
		catalog.FXModule,
		search.FXModule,
		server.FXModule,
	)

	app.Run()
}
