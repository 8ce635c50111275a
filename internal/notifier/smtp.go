package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"mime/quotedprintable"
	"net/smtp"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/yashpagade-yp/user-login/pkg/errors"
)

// SMTPConfig holds mail relay configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// SendsPerSecond throttles outgoing mail to stay under relay limits.
	// Zero disables throttling.
	SendsPerSecond float64
	SendBurst      int
}

// sendFunc matches smtp.SendMail and is injectable for tests.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender delivers email through an SMTP relay. Sends go through a
// circuit breaker so a dead relay fails fast instead of stalling request
// handlers, and through a rate limiter to respect relay quotas.
type SMTPSender struct {
	cfg     SMTPConfig
	breaker *gobreaker.CircuitBreaker[any]
	limiter *rate.Limiter
	send    sendFunc
	logger  *slog.Logger
}

// NewSMTPSender creates a sender for the given relay.
func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) *SMTPSender {
	settings := gobreaker.Settings{
		Name:    "smtp",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("smtp circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	var limiter *rate.Limiter
	if cfg.SendsPerSecond > 0 {
		burst := cfg.SendBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.SendsPerSecond), burst)
	}

	return &SMTPSender{
		cfg:     cfg,
		breaker: gobreaker.NewCircuitBreaker[any](settings),
		limiter: limiter,
		send:    smtp.SendMail,
		logger:  logger,
	}
}

// Name returns the name of this sender.
func (s *SMTPSender) Name() string {
	return "smtp"
}

// Send delivers the email through the relay.
func (s *SMTPSender) Send(ctx context.Context, email *Email) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("wait for send slot: %w", err)
		}
	}

	msg, err := buildMessage(s.cfg.From, email)
	if err != nil {
		return fmt.Errorf("build mime message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	_, err = s.breaker.Execute(func() (any, error) {
		return nil, s.send(addr, auth, s.cfg.From, []string{email.To}, msg)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "smtp send failed",
			slog.String("to", email.To),
			slog.String("subject", email.Subject),
			slog.String("error", err.Error()),
		)
		return apperrors.Dependency(err)
	}

	s.logger.InfoContext(ctx, "email sent",
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
	)
	return nil
}

// buildMessage assembles a multipart/alternative MIME message with text
// and HTML bodies.
func buildMessage(from string, email *Email) ([]byte, error) {
	const boundary = "=_alt_boundary_1"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", email.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", email.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	writePart := func(contentType, body string) error {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s; charset=utf-8\r\n", contentType)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		qp := quotedprintable.NewWriter(&b)
		if _, err := qp.Write([]byte(body)); err != nil {
			return err
		}
		if err := qp.Close(); err != nil {
			return err
		}
		b.WriteString("\r\n")
		return nil
	}

	if err := writePart("text/plain", email.TextBody); err != nil {
		return nil, err
	}
	if email.HTMLBody != "" {
		if err := writePart("text/html", email.HTMLBody); err != nil {
			return nil, err
		}
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return []byte(b.String()), nil
}
