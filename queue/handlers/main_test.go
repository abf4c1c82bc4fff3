package handlers

import (
	"context"
	"io"
	"log/slog"

	"github.com/quillhq/quill/mail"
)

// mailerMock is a mock implementation of the mailer for testing purposes.
type mailerMock struct {
	SendVerificationCodeEmailFunc func(ctx context.Context, email, code string) error
	SendRecoveryCodeEmailFunc     func(ctx context.Context, email, code string) error
}

func (m *mailerMock) SendVerificationCodeEmail(ctx context.Context, email, code string) error {
	if m.SendVerificationCodeEmailFunc != nil {
		return m.SendVerificationCodeEmailFunc(ctx, email, code)
	}
	return nil
}

func (m *mailerMock) SendRecoveryCodeEmail(ctx context.Context, email, code string) error {
	if m.SendRecoveryCodeEmailFunc != nil {
		return m.SendRecoveryCodeEmailFunc(ctx, email, code)
	}
	return nil
}

var _ mail.MailerInterface = (*mailerMock)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
