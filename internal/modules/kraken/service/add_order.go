package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"kraken_bot/internal/models"
)

const maxResponseBytes = 1 << 20

// AddOrder ставит один рыночный ордер и возвращает result из ответа как есть.
// Повторов нет: один вызов, один запрос.
func (c *Client) AddOrder(ctx context.Context, req models.OrderRequest) (json.RawMessage, error) {
	const op = "AddOrder"

	if c.apiKey == "" || c.apiSecret == "" {
		return nil, &OrderError{Kind: KindConfig, Op: op, Err: errors.New("kraken api credentials are empty")}
	}
	if !req.Volume.IsPositive() {
		return nil, &OrderError{Kind: KindRejected, Op: op, Err: errors.Errorf("volume must be > 0, got %s", req.Volume)}
	}

	nonce := strconv.FormatInt(c.nextNonce(), 10)
	form := url.Values{}
	form.Set("nonce", nonce)
	form.Set("ordertype", string(req.Type))
	form.Set("type", string(req.Side))
	form.Set("volume", req.Volume.String())
	form.Set("pair", req.Pair)
	if c.validateOnly {
		form.Set("validate", "true")
	}
	postData := form.Encode()

	signature, err := sign(addOrderPath, nonce, postData, c.apiSecret)
	if err != nil {
		return nil, &OrderError{Kind: KindConfig, Op: op, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+addOrderPath, strings.NewReader(postData))
	if err != nil {
		return nil, &OrderError{Kind: KindConfig, Op: op, Err: errors.Wrap(err, "new request")}
	}
	httpReq.Header.Set("API-Key", c.apiKey)
	httpReq.Header.Set("API-Sign", signature)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &OrderError{Kind: KindNetwork, Op: op, Err: errors.Wrap(err, "do request")}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &OrderError{Kind: KindNetwork, Op: op, Err: errors.Wrap(err, "read body")}
	}

	if resp.StatusCode/100 != 2 {
		return nil, &OrderError{
			Kind: kindForStatus(resp.StatusCode),
			Op:   op,
			Err:  errors.Errorf("http %d: %s", resp.StatusCode, string(data)),
		}
	}

	var wrap apiResponse
	if err := sonic.Unmarshal(data, &wrap); err != nil {
		return nil, &OrderError{Kind: KindRejected, Op: op, Err: errors.Wrapf(err, "decode body=%s", string(data))}
	}
	if len(wrap.Error) > 0 {
		return nil, &OrderError{
			Kind: classifyAPIErrors(wrap.Error),
			Op:   op,
			Err:  errors.Errorf("kraken error: %s", strings.Join(wrap.Error, "; ")),
		}
	}
	if len(wrap.Result) == 0 || string(wrap.Result) == "null" {
		return nil, &OrderError{Kind: KindRejected, Op: op, Err: errors.Errorf("empty result RAW=%s", string(data))}
	}

	return wrap.Result, nil
}
