package mail

import (
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Message describes a single outbound email with plaintext and HTML bodies.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Sender submits messages over SMTP.
type Sender interface {
	Send(messages ...Message) error
}

// Config holds SMTP submission settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers messages through a configured SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPSender constructs an SMTP backed sender.
func NewSMTPSender(cfg Config, logger *zap.Logger) *SMTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

// Send submits all messages over a single SMTP connection.
func (s *SMTPSender) Send(messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	outgoing := make([]*gomail.Message, 0, len(messages))
	for _, msg := range messages {
		m := gomail.NewMessage()
		m.SetHeader("From", s.from)
		m.SetHeader("To", msg.To)
		m.SetHeader("Subject", msg.Subject)
		m.SetBody("text/plain", msg.TextBody)
		if msg.HTMLBody != "" {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
		outgoing = append(outgoing, m)
	}

	if err := s.dialer.DialAndSend(outgoing...); err != nil {
		s.logger.Error("smtp send failed", zap.Int("messages", len(outgoing)), zap.Error(err))
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
