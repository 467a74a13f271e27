package service

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind грубая классификация отказа биржи.
type Kind string

const (
	KindNetwork     Kind = "network"
	KindAuth        Kind = "auth"
	KindRateLimit   Kind = "rate_limit"
	KindUnavailable Kind = "unavailable"
	KindRejected    Kind = "rejected"
	KindConfig      Kind = "config"
	KindUnknown     Kind = "unknown"
)

// OrderError ошибка вызова Kraken с причиной.
type OrderError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *OrderError) Error() string {
	return e.Op + " (" + string(e.Kind) + "): " + e.Err.Error()
}

func (e *OrderError) Unwrap() error { return e.Err }

// KindOf достаёт Kind из цепочки, для чужих ошибок KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var oe *OrderError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return KindUnknown
}

// classifyAPIErrors по строкам из поля error ответа Kraken.
func classifyAPIErrors(msgs []string) Kind {
	kind := KindRejected
	for _, m := range msgs {
		switch {
		case strings.HasPrefix(m, "EAPI:Invalid key"),
			strings.HasPrefix(m, "EAPI:Invalid signature"),
			strings.HasPrefix(m, "EAPI:Invalid nonce"),
			strings.HasPrefix(m, "EGeneral:Permission denied"):
			return KindAuth
		case strings.HasSuffix(m, "Rate limit exceeded"),
			strings.HasPrefix(m, "EOrder:Orders limit exceeded"):
			kind = KindRateLimit
		case strings.HasPrefix(m, "EService:Unavailable"),
			strings.HasPrefix(m, "EService:Busy"),
			strings.HasPrefix(m, "EService:Market in cancel_only mode"),
			strings.HasPrefix(m, "EService:Market in post_only mode"):
			if kind == KindRejected {
				kind = KindUnavailable
			}
		}
	}
	return kind
}

func kindForStatus(code int) Kind {
	switch {
	case code == 401 || code == 403:
		return KindAuth
	case code == 429:
		return KindRateLimit
	case code >= 500:
		return KindUnavailable
	default:
		return KindRejected
	}
}
