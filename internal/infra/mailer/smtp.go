package mailer

import (
	"context"

	"mentor-booking/internal/pkg/config"
	"mentor-booking/internal/pkg/errs"
	"mentor-booking/internal/usecase/sideeffect"

	"github.com/wneessen/go-mail"
)

type SMTP struct {
	from   string
	client *mail.Client
}

func NewSMTP(cfg config.MailConfig) (*SMTP, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, errs.Wrap(err, "failed to create smtp client")
	}
	return &SMTP{from: cfg.From, client: client}, nil
}

func (s *SMTP) Send(ctx context.Context, msg sideeffect.Email) error {
	m, err := buildMessage(s.from, msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return errs.Wrapf(err, "failed to send mail to %s", msg.To)
	}
	return nil
}

func buildMessage(from string, msg sideeffect.Email) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, errs.Wrapf(err, "invalid sender %q", from)
	}
	if err := m.To(msg.To); err != nil {
		return nil, errs.Wrapf(err, "invalid recipient %q", msg.To)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)
	return m, nil
}
