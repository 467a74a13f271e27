package kraken

import (
	"go.uber.org/fx"

	"kraken_bot/internal/modules/kraken/service"
)

// Module клиент Kraken REST.
func Module() fx.Option {
	return fx.Module("kraken",
		fx.Provide(
			service.NewClient,
		),
	)
}
