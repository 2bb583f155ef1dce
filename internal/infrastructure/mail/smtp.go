package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/wamunyima3/CloudScribe/internal/core/ports"
)

// SMTPConfig holds the outbound mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender renders and delivers one message per call. It implements
// ports.Mailer synchronously; wrap it in a queue.MailDispatcher for async use.
type SMTPSender struct {
	cfg      SMTPConfig
	renderer *Renderer
	send     sendFunc
}

func NewSMTPSender(cfg SMTPConfig, renderer *Renderer) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP_HOST is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg, renderer: renderer, send: smtp.SendMail}, nil
}

func (s *SMTPSender) Send(ctx context.Context, m ports.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject, body, err := s.renderer.Render(m.Template, m.Data)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	from := s.cfg.From
	if s.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}
	msg := []byte("From: " + from + "\r\n" +
		"To: " + m.To + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port)
	if err := s.send(addr, auth, s.cfg.From, []string{m.To}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender renders messages and logs them instead of delivering. Used when no
// SMTP server is configured.
type LogSender struct {
	renderer *Renderer
	log      zerolog.Logger
}

func NewLogSender(renderer *Renderer, log zerolog.Logger) *LogSender {
	return &LogSender{renderer: renderer, log: log}
}

func (s *LogSender) Send(_ context.Context, m ports.Mail) error {
	subject, _, err := s.renderer.Render(m.Template, m.Data)
	if err != nil {
		return err
	}
	s.log.Info().Str("to", m.To).Str("template", m.Template).Str("subject", subject).Msg("email not delivered: smtp disabled")
	return nil
}
