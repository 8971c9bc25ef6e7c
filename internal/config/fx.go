package config

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Invoke(func(log *zap.Logger) {
		Watch(log.Named("config"))
	}),
)
