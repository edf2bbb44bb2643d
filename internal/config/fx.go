package config

import "go.uber.org/fx"

// Module wires application and guard configuration.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewGuardConfigHolder,
	),
)
