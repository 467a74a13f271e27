package dispatcher

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"kraken_bot/internal/modules/config"
	"kraken_bot/internal/modules/dispatcher/service"
	healthsvc "kraken_bot/internal/modules/health/service"
	krakensvc "kraken_bot/internal/modules/kraken/service"
	notifysvc "kraken_bot/internal/modules/notify/service"
)

func NewConfig(cfg *config.Config) service.Config {
	return service.Config{
		Pair:            cfg.Trading.Pair,
		Volume:          cfg.Trading.PositionSize,
		Serialize:       cfg.Dispatch.Serialize,
		RatePerSec:      cfg.Dispatch.RatePerSec,
		NotifyTimeout:   cfg.Notify.Timeout,
		ExchangeTimeout: cfg.Kraken.Timeout,
	}
}

func NewDispatcher(
	cfg service.Config,
	client *krakensvc.Client,
	notifier notifysvc.Notifier,
	state *healthsvc.State,
	log *zap.Logger,
) *service.Dispatcher {
	return service.New(cfg, client, notifier, state, log.Named("dispatcher"))
}

func Module() fx.Option {
	return fx.Module("dispatcher",
		fx.Provide(
			NewConfig,
			NewDispatcher,
		),
	)
}
