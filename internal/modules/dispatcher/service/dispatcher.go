package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"kraken_bot/internal/metrics"
	krakensvc "kraken_bot/internal/modules/kraken/service"
	"kraken_bot/internal/models"
)

// ErrThrottled ордер не ушёл на биржу: лимитер не дождался слота до отмены контекста.
var ErrThrottled = errors.New("order throttled")

const kindThrottled = "throttled"

type Exchange interface {
	AddOrder(ctx context.Context, req models.OrderRequest) (json.RawMessage, error)
}

type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Recorder отмечает факт и исход последнего ордера (health).
type Recorder interface {
	TouchOrder(t time.Time, ok bool)
}

type Config struct {
	Pair          string
	Volume        decimal.Decimal
	Serialize     bool
	RatePerSec    float64
	NotifyTimeout time.Duration

	// ExchangeTimeout ограничивает ожидание лимитера и вызов биржи отдельно от входящего запроса.
	ExchangeTimeout time.Duration
}

// Dispatcher превращает действие в market-ордер, отправляет его и шлёт ровно одно уведомление.
type Dispatcher struct {
	cfg      Config
	exchange Exchange
	notifier Notifier
	recorder Recorder
	limiter  *rate.Limiter
	log      *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

func New(cfg Config, ex Exchange, n Notifier, rec Recorder, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		exchange: ex,
		notifier: n,
		recorder: rec,
		log:      log,
		now:      time.Now,
	}
	if cfg.RatePerSec > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
	}
	return d
}

// Dispatch блокирует до ответа биржи и попытки уведомления.
// Ошибка уведомления на результат не влияет.
func (d *Dispatcher) Dispatch(ctx context.Context, action models.Action) models.OrderResult {
	req := models.OrderRequest{
		ID:     uuid.NewString(),
		Action: action,
		Pair:   d.cfg.Pair,
		Side:   action.Side(),
		Type:   models.OrderTypeMarket,
		Volume: d.cfg.Volume,
	}

	span, ctx := opentracing.StartSpanFromContext(ctx, "dispatch.order")
	defer span.Finish()
	span.SetTag("order.id", req.ID)
	span.SetTag("order.action", req.Action.String())
	span.SetTag("order.pair", req.Pair)
	span.SetTag("order.side", string(req.Side))

	res := d.submit(ctx, req)
	if !res.OK() {
		ext.Error.Set(span, true)
		span.LogKV("error", res.Err.Error())
	}

	d.notify(ctx, res)
	return res
}

func (d *Dispatcher) submit(ctx context.Context, req models.OrderRequest) models.OrderResult {
	log := d.log.With(
		zap.String("order_id", req.ID),
		zap.String("action", req.Action.String()),
		zap.String("pair", req.Pair),
		zap.String("side", string(req.Side)),
	)

	// Ордер не отменяется вместе с входящим запросом: Kraken мог его уже принять.
	ctx = context.WithoutCancel(ctx)

	if d.limiter != nil {
		wctx, cancel := d.exchangeContext(ctx)
		err := d.limiter.Wait(wctx)
		cancel()
		if err != nil {
			err = errors.Wrap(ErrThrottled, err.Error())
			log.Warn("order throttled", zap.Error(err))
			d.record(req, kindThrottled)
			return models.OrderResult{Request: req, Err: err}
		}
	}

	if d.cfg.Serialize {
		d.mu.Lock()
		defer d.mu.Unlock()
	}

	log.Info("placing order", zap.String("volume", req.Volume.String()))

	callCtx, cancel := d.exchangeContext(ctx)
	defer cancel()

	start := time.Now()
	payload, err := d.exchange.AddOrder(callCtx, req)
	metrics.OrderDuration.WithLabelValues(string(req.Side)).Observe(time.Since(start).Seconds())

	if err != nil {
		kind := string(krakensvc.KindOf(err))
		log.Error("order failed", zap.String("kind", kind), zap.Error(err))
		d.record(req, kind)
		return models.OrderResult{Request: req, Err: err}
	}

	fields := []zap.Field{zap.Duration("took", time.Since(start)), zap.ByteString("payload", payload)}
	if parsed, perr := krakensvc.ParseAddOrderResult(payload); perr == nil {
		fields = append(fields, zap.Strings("txid", parsed.TxID), zap.String("descr", parsed.Descr.Order))
	}
	log.Info("order placed", fields...)
	d.record(req, "success")

	return models.OrderResult{Request: req, Payload: payload}
}

func (d *Dispatcher) exchangeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.ExchangeTimeout > 0 {
		return context.WithTimeout(ctx, d.cfg.ExchangeTimeout)
	}
	return context.WithCancel(ctx)
}

func (d *Dispatcher) record(req models.OrderRequest, outcome string) {
	metrics.OrdersTotal.WithLabelValues(string(req.Side), outcome).Inc()
	if d.recorder != nil {
		d.recorder.TouchOrder(d.now(), outcome == "success")
	}
}

// notify не зависит от отмены входящего запроса: клиент мог уже отвалиться.
func (d *Dispatcher) notify(ctx context.Context, res models.OrderResult) {
	ctx = context.WithoutCancel(ctx)
	if d.cfg.NotifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.NotifyTimeout)
		defer cancel()
	}

	n := models.NotificationFor(res)
	if err := d.notifier.Notify(ctx, n); err != nil {
		d.log.Error("notification failed",
			zap.String("order_id", res.Request.ID),
			zap.String("subject", n.Subject),
			zap.Error(err),
		)
	}
}
