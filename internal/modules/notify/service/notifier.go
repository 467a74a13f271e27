package service

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"kraken_bot/internal/metrics"
	"kraken_bot/internal/models"
)

// Notifier best-effort доставка уведомления. Ошибку вызывающий только логирует.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Fanout шлёт во все каналы по очереди, ошибки складывает.
type Fanout struct {
	sinks []Notifier
}

func NewFanout(sinks ...Notifier) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Notify(ctx context.Context, n models.Notification) error {
	var err error
	for _, s := range f.sinks {
		err = multierr.Append(err, s.Notify(ctx, n))
	}
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	return nil
}

func (f *Fanout) Len() int { return len(f.sinks) }

// Stdout заглушка на случай, когда SMTP не настроен: пишет в лог.
type Stdout struct {
	log *zap.Logger
}

func NewStdout(log *zap.Logger) *Stdout { return &Stdout{log: log} }

func (s *Stdout) Notify(_ context.Context, n models.Notification) error {
	s.log.Info("notification", zap.String("subject", n.Subject), zap.String("body", n.Body))
	return nil
}
