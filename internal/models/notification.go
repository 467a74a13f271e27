package models

import "fmt"

// Notification тема/тело письма по итогам ордера.
type Notification struct {
	Subject string
	Body    string
}

// NotificationFor собирает уведомление из результата ордера.
func NotificationFor(res OrderResult) Notification {
	req := res.Request
	if res.OK() {
		return Notification{
			Subject: fmt.Sprintf("%s Executed", req.Action),
			Body:    fmt.Sprintf("%s executed on Kraken for %s\nResponse: %s", req.Action, req.Pair, string(res.Payload)),
		}
	}
	return Notification{
		Subject: fmt.Sprintf("%s Failed", req.Action),
		Body:    fmt.Sprintf("Failed to execute %s on Kraken: %v", req.Action, res.Err),
	}
}
