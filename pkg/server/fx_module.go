package server

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"

	"github.com/gutensearch/gutensearch/pkg/catalog"
	"github.com/gutensearch/gutensearch/pkg/search"
)

// FXModule wires the HTTP API into Fx.
var FXModule = fx.Module("server",
	fx.Provide(
		NewConfig,
		newServerFromClients,
	),
	fx.Invoke(RegisterServerLifecycle),
)

func newServerFromClients(cfg Config, svc *search.Service, cat *catalog.Client, logger Logger) *Server {
	return NewServer(cfg, svc, cat, logger)
}

// RegisterServerLifecycle starts the API listener on fx start and drains it
// on stop.
func RegisterServerLifecycle(lc fx.Lifecycle, s *Server, logger Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("api server listening", nil, map[string]interface{}{"address": s.httpServer.Addr})
				if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("api server terminated", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.httpServer.Shutdown(ctx)
		},
	})
}
