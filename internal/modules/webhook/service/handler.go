package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kraken_bot/internal/metrics"
	"kraken_bot/internal/models"
)

const maxBodyBytes = 64 << 10

const (
	StatusSuccess = "success"
	StatusIgnored = "ignored"
	StatusError   = "error"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, action models.Action) models.OrderResult
}

type Response struct {
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

type Handler struct {
	dispatcher Dispatcher
	log        *zap.Logger
}

func NewHandler(d Dispatcher, log *zap.Logger) *Handler {
	return &Handler{dispatcher: d, log: log}
}

// Routes только POST /webhook, остальное отдаёт chi (404/405).
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/webhook", h.handleWebhook)
	return r
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(zap.String("request_id", middleware.GetReqID(r.Context())))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		metrics.SignalsTotal.WithLabelValues("malformed").Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("webhook body too large", zap.Int64("limit", tooLarge.Limit))
			h.write(w, http.StatusRequestEntityTooLarge, Response{Status: StatusError, Message: "request body too large"})
			return
		}
		log.Warn("webhook body read failed", zap.Error(err))
		h.write(w, http.StatusBadRequest, Response{Status: StatusError, Message: ErrMalformed.Error()})
		return
	}

	action, ok, err := ParseSignal(body)
	if err != nil {
		metrics.SignalsTotal.WithLabelValues("malformed").Inc()
		log.Warn("malformed webhook body", zap.Error(err))
		h.write(w, http.StatusBadRequest, Response{Status: StatusError, Message: ErrMalformed.Error()})
		return
	}
	if !ok {
		metrics.SignalsTotal.WithLabelValues("ignored").Inc()
		log.Info("unknown signal ignored", zap.ByteString("body", body))
		h.write(w, http.StatusOK, Response{Status: StatusIgnored, Message: "Unknown signal"})
		return
	}

	metrics.SignalsTotal.WithLabelValues("accepted").Inc()
	log.Info("signal accepted", zap.String("action", action.String()))

	res := h.dispatcher.Dispatch(r.Context(), action)
	if !res.OK() {
		h.write(w, http.StatusBadGateway, Response{Status: StatusError, Message: res.Err.Error()})
		return
	}
	h.write(w, http.StatusOK, Response{Status: StatusSuccess, Response: res.Payload})
}

func (h *Handler) write(w http.ResponseWriter, code int, resp Response) {
	body, err := sonic.Marshal(resp)
	if err != nil {
		h.log.Error("encode response", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
