package models

// Action имя алерта, которое присылает TradingView в поле alert_message.
type Action string

const (
	ActionLongEntry  Action = "LONG_ENTRY"
	ActionLongAdd    Action = "LONG_ADD"
	ActionShortEntry Action = "SHORT_ENTRY"
	ActionShortAdd   Action = "SHORT_ADD"
)

// Side сторона ордера в терминах Kraken.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Signal входящий алерт, живёт только в рамках одного запроса.
// alert_message может прийти любого JSON-типа, не-строка это неизвестный сигнал.
type Signal struct {
	AlertMessage interface{} `json:"alert_message"`
}

func (s Signal) Action() (Action, bool) {
	raw, ok := s.AlertMessage.(string)
	if !ok {
		return "", false
	}
	return ParseAction(raw)
}

// ParseAction exact-match, регистр важен.
func ParseAction(raw string) (Action, bool) {
	switch a := Action(raw); a {
	case ActionLongEntry, ActionLongAdd, ActionShortEntry, ActionShortAdd:
		return a, true
	default:
		return "", false
	}
}

// Side LONG_* -> buy, SHORT_* -> sell.
func (a Action) Side() Side {
	switch a {
	case ActionLongEntry, ActionLongAdd:
		return SideBuy
	default:
		return SideSell
	}
}

func (a Action) String() string { return string(a) }
