package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"
	"github.com/quillhq/quill/config"
)

// MailerInterface is what job handlers need from a mailer; tests substitute
// their own implementation.
type MailerInterface interface {
	SendVerificationCodeEmail(ctx context.Context, email, code string) error
	SendRecoveryCodeEmail(ctx context.Context, email, code string) error
}

var _ MailerInterface = (*Mailer)(nil)

// Mailer sends the transactional emails of the auth flows. All messages
// carry a short numeric code the user types back into the client, so the
// bodies stay template-free.
type Mailer struct {
	configProvider *config.Provider
}

// New creates a new Mailer reading SMTP settings from the config provider,
// so credential rotations via config reload apply to the next send.
func New(provider *config.Provider) (*Mailer, error) {
	if provider == nil {
		return nil, fmt.Errorf("mail: config provider cannot be nil")
	}
	return &Mailer{configProvider: provider}, nil
}

func (m *Mailer) newMail() (*mailyak.MailYak, error) {
	cfg := m.configProvider.Get().Smtp

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var auth smtp.Auth
	switch cfg.AuthMethod {
	case "", "plain":
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	case "cram-md5":
		auth = smtp.CRAMMD5Auth(cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("mail: unsupported auth method %q", cfg.AuthMethod)
	}

	var mail *mailyak.MailYak
	if cfg.UseTLS {
		var err error
		mail, err = mailyak.NewWithTLS(addr, auth, nil)
		if err != nil {
			return nil, fmt.Errorf("mail: failed to create TLS client: %w", err)
		}
	} else {
		mail = mailyak.New(addr, auth)
	}

	mail.From(cfg.FromAddress)
	mail.FromName(cfg.FromName)
	if cfg.LocalName != "" {
		mail.LocalName(cfg.LocalName)
	}
	return mail, nil
}

// send runs mail.Send in a goroutine so the context deadline is honored;
// mailyak itself has no context support.
func send(ctx context.Context, mail *mailyak.MailYak) error {
	done := make(chan error, 1)
	go func() {
		done <- mail.Send()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// SendVerificationCodeEmail delivers the 6-digit email verification code.
func (m *Mailer) SendVerificationCodeEmail(ctx context.Context, email, code string) error {
	cfg := m.configProvider.Get().Smtp

	mail, err := m.newMail()
	if err != nil {
		return err
	}

	mail.To(email)
	mail.Subject(fmt.Sprintf("Verify your %s email", cfg.FromName))
	mail.Plain().Set(fmt.Sprintf(
		"Your email verification code is: %s\n\nEnter this code in the app to verify your address. If you did not sign up, you can ignore this message.\n", code))
	mail.HTML().Set(fmt.Sprintf(`
		<h1>Verify your email</h1>
		<p>Your verification code is:</p>
		<p style="font-size:24px;letter-spacing:4px;"><strong>%s</strong></p>
		<p>Enter this code in the app to verify your address. If you did not sign up, you can ignore this message.</p>
	`, code))

	if err := send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// SendRecoveryCodeEmail delivers the 6-digit password recovery code.
func (m *Mailer) SendRecoveryCodeEmail(ctx context.Context, email, code string) error {
	cfg := m.configProvider.Get().Smtp

	mail, err := m.newMail()
	if err != nil {
		return err
	}

	mail.To(email)
	mail.Subject(fmt.Sprintf("Reset your %s password", cfg.FromName))
	mail.Plain().Set(fmt.Sprintf(
		"Your password recovery code is: %s\n\nEnter this code together with your new password. If you did not request a reset, you can ignore this message.\n", code))
	mail.HTML().Set(fmt.Sprintf(`
		<h1>Reset your password</h1>
		<p>Your recovery code is:</p>
		<p style="font-size:24px;letter-spacing:4px;"><strong>%s</strong></p>
		<p>Enter this code together with your new password. If you did not request a reset, you can ignore this message.</p>
	`, code))

	if err := send(ctx, mail); err != nil {
		return fmt.Errorf("failed to send recovery email: %w", err)
	}
	return nil
}
