package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"kraken_bot/internal/models"
)

type recordingNotifier struct {
	mu    sync.Mutex
	got   []models.Notification
	err   error
	delay time.Duration
}

func (r *recordingNotifier) Notify(ctx context.Context, n models.Notification) error {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return r.err
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func TestFanout(t *testing.T) {
	ok := &recordingNotifier{}
	bad := &recordingNotifier{err: errors.New("smtp: dial: refused")}
	bad2 := &recordingNotifier{err: errors.New("telegram: send: 401")}

	f := NewFanout(ok, bad, bad2)
	err := f.Notify(context.Background(), models.Notification{Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Equal(t, 1, ok.count())
	assert.Equal(t, 1, bad.count())
	assert.Equal(t, 1, bad2.count())

	require.NoError(t, NewFanout(ok).Notify(context.Background(), models.Notification{}))
	assert.Equal(t, 2, ok.count())
}

func TestStdout(t *testing.T) {
	require.NoError(t, NewStdout(zap.NewNop()).Notify(context.Background(), models.Notification{Subject: "s"}))
}

func TestQueueDelivers(t *testing.T) {
	next := &recordingNotifier{}
	q := NewQueue(next, 4, time.Second, zap.NewNop())
	q.Start()

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Notify(context.Background(), models.Notification{Subject: "s"}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))
	assert.Equal(t, 3, next.count())

	assert.ErrorIs(t, q.Notify(context.Background(), models.Notification{}), ErrQueueClosed)
}

func TestQueueFull(t *testing.T) {
	next := &recordingNotifier{}
	// воркер не запущен, буфер на один элемент
	q := NewQueue(next, 1, time.Second, zap.NewNop())

	require.NoError(t, q.Notify(context.Background(), models.Notification{Subject: "first"}))
	assert.ErrorIs(t, q.Notify(context.Background(), models.Notification{Subject: "second"}), ErrQueueFull)

	q.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))
	require.Equal(t, 1, next.count())
	assert.Equal(t, "first", next.got[0].Subject)
}

func TestQueueSwallowsSinkError(t *testing.T) {
	next := &recordingNotifier{err: errors.New("down")}
	q := NewQueue(next, 2, time.Second, zap.NewNop())
	q.Start()

	require.NoError(t, q.Notify(context.Background(), models.Notification{Subject: "s"}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))
	assert.Equal(t, 1, next.count())
}
