package service

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kraken_bot/internal/metrics"
	"kraken_bot/internal/models"
)

var (
	ErrQueueFull   = errors.New("notification queue is full")
	ErrQueueClosed = errors.New("notification queue is closed")
)

// Queue асинхронная обёртка: Notify только кладёт в буфер, доставляет один воркер.
type Queue struct {
	next    Notifier
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	ch     chan models.Notification
	done   chan struct{}
}

func NewQueue(next Notifier, size int, timeout time.Duration, log *zap.Logger) *Queue {
	return &Queue{
		next:    next,
		timeout: timeout,
		log:     log,
		ch:      make(chan models.Notification, size),
		done:    make(chan struct{}),
	}
}

func (q *Queue) Notify(_ context.Context, n models.Notification) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- n:
		return nil
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		q.log.Error("notification dropped", zap.String("subject", n.Subject), zap.Error(ErrQueueFull))
		return ErrQueueFull
	}
}

func (q *Queue) Start() {
	go q.run()
}

func (q *Queue) run() {
	defer close(q.done)
	for n := range q.ch {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		if err := q.next.Notify(ctx, n); err != nil {
			q.log.Error("failed to send notification", zap.String("subject", n.Subject), zap.Error(err))
		} else {
			q.log.Info("notification sent", zap.String("subject", n.Subject))
		}
		cancel()
	}
}

// Stop закрывает приём и ждёт, пока воркер разберёт хвост (или ctx).
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
