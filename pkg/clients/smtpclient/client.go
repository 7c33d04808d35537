package smtpclient

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Options configures the SMTP connection
type Options struct {
	Host     string
	Port     int
	Username string
	Password string

	// SSL uses implicit TLS (usually port 465); otherwise STARTTLS is attempted
	SSL bool

	Sender string
}

// sender is the part of *mail.Client used to deliver messages
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Client sends plain-text notification emails over SMTP
type Client struct {
	ctx    context.Context
	mailer sender
	from   string
}

// NewClient builds an SMTP client. No connection is made until the first send.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	mailOpts := []mail.Option{
		mail.WithPort(opts.Port),
	}
	if opts.Username != "" {
		mailOpts = append(mailOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(opts.Username),
			mail.WithPassword(opts.Password),
		)
	}
	if opts.SSL {
		mailOpts = append(mailOpts, mail.WithSSL())
	} else {
		mailOpts = append(mailOpts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(opts.Host, mailOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &Client{
		ctx:    ctx,
		mailer: client,
		from:   opts.Sender,
	}, nil
}

// SendEmail sends one message, dialling the server for it
func (c *Client) SendEmail(to, subject, body string) error {
	msg, err := buildMsg(c.from, to, subject, body)
	if err != nil {
		return err
	}

	if err := c.mailer.DialAndSendWithContext(c.ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMsg(from, to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("failed to set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("failed to set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
