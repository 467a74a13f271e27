package service

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"kraken_bot/internal/models"
)

var ErrMalformed = errors.New("invalid request body")

// Ошибка только для не-объекта. alert_message любого типа или его отсутствие это игнор.
const signalSchema = `{"type": "object"}`

var signalSchemaLoader = gojsonschema.NewStringLoader(signalSchema)

// ParseSignal разбирает тело вебхука.
// ok=false без ошибки значит сигнал не распознан и должен быть проигнорирован.
func ParseSignal(body []byte) (models.Action, bool, error) {
	if err := validate(body); err != nil {
		return "", false, err
	}

	var sig models.Signal
	if err := sonic.Unmarshal(body, &sig); err != nil {
		return "", false, errors.Wrap(ErrMalformed, err.Error())
	}

	action, ok := sig.Action()
	return action, ok, nil
}

func validate(body []byte) error {
	result, err := gojsonschema.Validate(signalSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return errors.Wrap(ErrMalformed, err.Error())
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return errors.Wrap(ErrMalformed, strings.Join(msgs, "; "))
	}
	return nil
}
