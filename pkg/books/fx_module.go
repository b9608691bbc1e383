package books

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the book store into Fx and runs migrations on startup.
var FXModule = fx.Module("books",
	fx.Provide(
		NewStore,
	),
	fx.Invoke(RegisterStoreLifecycle),
)

// RegisterStoreLifecycle migrates the schema before the service starts
// accepting requests.
func RegisterStoreLifecycle(lc fx.Lifecycle, store *Store) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return store.Migrate(ctx)
		},
	})
}
