// Package smtp implements the outbound email transport with gomail.
package smtp

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/piyushAgrawal44/ka-kha-ga/internal/core/ports"
)

// Config carries SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender dials the SMTP server per message. Connection reuse is not worth it
// at current volumes; the retry policy lives in the email service, not here.
type Sender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSender(cfg Config) *Sender {
	return &Sender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers one compiled email. The context is honoured before dialing;
// gomail itself does not support cancellation mid-send.
func (s *Sender) Send(ctx context.Context, to, recipientName string, email ports.CompiledEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	if recipientName != "" {
		m.SetAddressHeader("To", to, recipientName)
	} else {
		m.SetHeader("To", to)
	}
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", email.HTML)
	if email.Text != "" {
		m.AddAlternative("text/plain", email.Text)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
