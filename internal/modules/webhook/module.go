package webhook

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"kraken_bot/internal/modules/config"
	dispatchersvc "kraken_bot/internal/modules/dispatcher/service"
	healthsvc "kraken_bot/internal/modules/health/service"
	"kraken_bot/internal/modules/webhook/service"
)

func NewHandler(d *dispatchersvc.Dispatcher, log *zap.Logger) *service.Handler {
	return service.NewHandler(d, log.Named("webhook"))
}

// RunHTTP публичный листенер. Готовность выставляется только после bind.
func RunHTTP(lc fx.Lifecycle, cfg *config.Config, h *service.Handler, state *healthsvc.State, log *zap.Logger) {
	addr := cfg.PublicAddr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			log.Info("webhook listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					log.Error("webhook server stopped", zap.Error(err))
				}
			}()
			state.SetReady(true)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			state.SetReady(false)
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("webhook",
		fx.Provide(
			NewHandler,
		),
		fx.Invoke(RunHTTP),
	)
}
