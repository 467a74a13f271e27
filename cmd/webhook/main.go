package main

import (
	"context"
	"log"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"kraken_bot/internal/modules/config"
	"kraken_bot/internal/modules/dispatcher"
	"kraken_bot/internal/modules/health"
	"kraken_bot/internal/modules/kraken"
	"kraken_bot/internal/modules/notify"
	"kraken_bot/internal/modules/webhook"
	"kraken_bot/pkg/logger"
	"kraken_bot/pkg/tracing"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(cfg.Tracing.ServiceName)
	return logger.New(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
}

func newTracer(lc fx.Lifecycle, cfg *config.Config) (opentracing.Tracer, error) {
	tracer, closer, err := tracing.InitTracer(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Host:        cfg.Tracing.Host,
		Port:        cfg.Tracing.Port,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			return nil
		},
	})
	return tracer, nil
}

func main() {
	app := fx.New(
		config.Module(),
		fx.Provide(
			newLogger,
			newTracer,
		),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		kraken.Module(),
		notify.Module(),
		health.Module(),
		dispatcher.Module(),
		webhook.Module(),
		fx.Invoke(func(cfg *config.Config, _ opentracing.Tracer, l *zap.Logger) {
			if !cfg.HasKrakenCreds() {
				l.Warn("KRAKEN_API_KEY/KRAKEN_API_SECRET not set, orders will fail with auth errors")
			}
			logger.Info("trading %s, size %s, validate_only=%t",
				cfg.Trading.Pair, cfg.Trading.PositionSize, cfg.Kraken.ValidateOnly)
		}),
	)
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}
