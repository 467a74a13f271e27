package notify

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"kraken_bot/internal/modules/config"
	"kraken_bot/internal/modules/notify/service"
)

// NewNotifier собирает каналы из конфига: SMTP, Telegram, иначе stdout.
// При notify.async оборачивает всё в очередь с одним воркером.
func NewNotifier(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) service.Notifier {
	var sinks []service.Notifier

	if cfg.SMTP.Host != "" {
		sinks = append(sinks, service.NewSMTP(service.SMTPConfig{
			Host:           cfg.SMTP.Host,
			Port:           cfg.SMTP.Port,
			From:           cfg.SMTP.Address,
			Password:       cfg.SMTP.Password,
			To:             service.SplitRecipients(cfg.SMTP.To),
			Timeout:        cfg.SMTP.Timeout,
			AllowPlaintext: cfg.SMTP.AllowPlaintext,
		}))
	}

	// Telegram: если TELEGRAM_* нет или бот не поднялся, работаем без него
	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
		tg, err := service.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Notify.Timeout)
		if err != nil {
			log.Warn("telegram notifier disabled", zap.Error(err))
		} else {
			sinks = append(sinks, tg)
		}
	}

	if len(sinks) == 0 {
		log.Warn("no notification channel configured, notifications go to log")
		sinks = append(sinks, service.NewStdout(log))
	}

	var n service.Notifier = service.NewFanout(sinks...)
	if !cfg.Notify.Async {
		return n
	}

	q := service.NewQueue(n, cfg.Notify.QueueSize, cfg.Notify.Timeout, log)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			q.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return q.Stop(ctx)
		},
	})
	return q
}

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			NewNotifier,
		),
	)
}
