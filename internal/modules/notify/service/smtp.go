package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/wneessen/go-mail"

	"kraken_bot/internal/models"
)

type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Password string
	To       []string
	Timeout  time.Duration
	// AllowPlaintext STARTTLS по возможности, без него TLS обязателен.
	AllowPlaintext bool
}

// SMTP отправка письма через go-mail. Если задан пароль, а сервер не умеет AUTH, это ошибка.
type SMTP struct {
	cfg SMTPConfig
	now func() time.Time
}

func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{cfg: cfg, now: time.Now}
}

// SplitRecipients "a@x, b@y" -> [a@x b@y]
func SplitRecipients(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *SMTP) Notify(ctx context.Context, n models.Notification) error {
	if len(s.cfg.To) == 0 {
		return errors.New("smtp: no recipients")
	}

	msg, err := s.message(n)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(s.cfg.Host, s.options()...)
	if err != nil {
		return errors.Wrap(err, "smtp: client")
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	return errors.Wrap(client.DialAndSendWithContext(ctx, msg), "smtp: send")
}

func (s *SMTP) options() []mail.Option {
	policy := mail.TLSMandatory
	if s.cfg.AllowPlaintext {
		policy = mail.TLSOpportunistic
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(policy),
	}
	if s.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.cfg.Timeout))
	}
	if s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.From),
			mail.WithPassword(s.cfg.Password),
		)
	}
	return opts
}

func (s *SMTP) message(n models.Notification) (*mail.Msg, error) {
	m := mail.NewMsg(mail.WithEncoding(mail.NoEncoding))
	if err := m.From(s.cfg.From); err != nil {
		return nil, errors.Wrap(err, "smtp: from")
	}
	if err := m.To(s.cfg.To...); err != nil {
		return nil, errors.Wrap(err, "smtp: to")
	}
	m.Subject(n.Subject)
	m.SetDateWithValue(s.now())
	m.SetBodyString(mail.TypeTextPlain, n.Body)
	return m, nil
}
