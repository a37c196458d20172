package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// mailSender is the part of *mail.Client the SMTP notifier uses.
type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPNotifier emails the report as an attachment.
type SMTPNotifier struct {
	dial   func(SMTPConfig) (mailSender, error)
	config SMTPConfig
}

// NewSMTPNotifier creates an email notifier.
func NewSMTPNotifier(config SMTPConfig) (*SMTPNotifier, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid smtp config: %w", err)
	}
	return &SMTPNotifier{config: config, dial: newMailClient}, nil
}

// Name implements Notifier.
func (s *SMTPNotifier) Name() string {
	return ChannelSMTP
}

// Notify implements Notifier.
func (s *SMTPNotifier) Notify(ctx context.Context, n Notification) error {
	msg, err := s.message(n)
	if err != nil {
		return err
	}

	client, err := s.dial(s.config)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail via %s: %w", s.config.Host, err)
	}
	return nil
}

func (s *SMTPNotifier) message(n Notification) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.config.From); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", s.config.From, err)
	}
	if err := msg.To(s.config.Recipients()...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(n.Subject)
	msg.SetBodyString(mail.TypeTextPlain, n.Body)
	if n.ReportPath != "" {
		msg.AttachFile(n.ReportPath)
	}
	return msg, nil
}

func newMailClient(c SMTPConfig) (mailSender, error) {
	opts := []mail.Option{
		mail.WithPort(c.Port),
		mail.WithTLSPolicy(tlsPolicy(c.TLSPolicy)),
	}
	if c.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.Username),
			mail.WithPassword(c.Password),
		)
	}
	if c.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(c.Timeout))
	}
	return mail.NewClient(c.Host, opts...)
}

func tlsPolicy(name string) mail.TLSPolicy {
	switch strings.ToLower(name) {
	case "opportunistic":
		return mail.TLSOpportunistic
	case "none":
		return mail.NoTLS
	default:
		return mail.TLSMandatory
	}
}
