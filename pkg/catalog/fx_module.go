package catalog

import (
	"go.uber.org/fx"
)

// FXModule wires the catalog client into Fx.
var FXModule = fx.Module("catalog",
	fx.Provide(
		NewConfig, // -> *Config
		NewClient, // -> *Client
	),
)
