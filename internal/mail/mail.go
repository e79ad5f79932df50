// Package mail delivers confirmation codes.
package mail

import (
	"context"
	"fmt"
	"time"

	"yamdb/internal/config"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"
)

const confirmationSubject = "YaMDb confirmation code"

// Sender delivers a single plain text message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends through an SMTP relay.
type SMTPSender struct {
	client *gomail.Client
	from   string
}

func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(cfg.MailTimeout),
	}
	if cfg.SMTPUsername != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.SMTPUsername),
			gomail.WithPassword(cfg.SMTPPassword),
		)
	}

	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.MailFrom}, nil
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them. Used in
// development.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, to, subject, body string) error {
	s.log.Info().Str("to", to).Str("subject", subject).Str("body", body).Msg("mail")
	return nil
}

// NewSender picks the backend configured by MAIL_BACKEND.
func NewSender(cfg *config.Config, log zerolog.Logger) (Sender, error) {
	switch cfg.MailBackend {
	case "smtp":
		return NewSMTPSender(cfg)
	case "log", "":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unknown mail backend %q", cfg.MailBackend)
	}
}

// Recorder is notified about each delivery attempt.
type Recorder interface {
	Email(sent bool)
}

// Dispatcher sends confirmation codes in the background. Failures are logged
// and counted but never reach the caller.
type Dispatcher struct {
	sender   Sender
	timeout  time.Duration
	log      zerolog.Logger
	recorder Recorder
}

func NewDispatcher(sender Sender, timeout time.Duration, log zerolog.Logger, recorder Recorder) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{sender: sender, timeout: timeout, log: log, recorder: recorder}
}

// SendConfirmationCode returns immediately; the returned channel is closed
// once delivery finished, which tests use to wait.
func (d *Dispatcher) SendConfirmationCode(ctx context.Context, email, username, code string) <-chan struct{} {
	done := make(chan struct{})
	// the request context is cancelled as soon as the response is written
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)

	go func() {
		defer close(done)
		defer cancel()

		err := d.sender.Send(sendCtx, email, confirmationSubject, confirmationBody(username, code))
		if d.recorder != nil {
			d.recorder.Email(err == nil)
		}
		if err != nil {
			d.log.Error().Err(err).Str("username", username).Msg("failed to send confirmation code")
			return
		}
		d.log.Debug().Str("username", username).Msg("confirmation code sent")
	}()
	return done
}

func confirmationBody(username, code string) string {
	return fmt.Sprintf("Hello, %s!\n\nYour confirmation code: %s\n\nExchange it for an access token at /api/v1/auth/token/.\n", username, code)
}
