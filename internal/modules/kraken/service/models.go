package service

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// apiResponse общий конверт ответа Kraken REST.
type apiResponse struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

// AddOrderResult то, что Kraken кладёт в result для AddOrder.
type AddOrderResult struct {
	Descr struct {
		Order string `json:"order"`
		Close string `json:"close,omitempty"`
	} `json:"descr"`
	TxID []string `json:"txid"`
}

func ParseAddOrderResult(raw json.RawMessage) (AddOrderResult, error) {
	var r AddOrderResult
	err := sonic.Unmarshal(raw, &r)
	return r, err
}
