package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type OrderType string

const OrderTypeMarket OrderType = "market"

// OrderRequest создаётся на каждый принятый сигнал и больше не меняется.
type OrderRequest struct {
	ID     string
	Action Action
	Pair   string
	Side   Side
	Type   OrderType
	Volume decimal.Decimal
}

// OrderResult итог отправки: либо Payload (result от Kraken), либо Err.
type OrderResult struct {
	Request OrderRequest
	Payload json.RawMessage
	Err     error
}

func (r OrderResult) OK() bool { return r.Err == nil }
