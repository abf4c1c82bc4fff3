package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/mail"
	"github.com/quillhq/quill/queue"
)

// VerificationEmailHandler delivers the 6-digit verification code stored for
// a user. The code is generated and persisted by the HTTP handler before the
// job is enqueued; this handler only sends the email.
type VerificationEmailHandler struct {
	db     db.DbAuth
	mailer mail.MailerInterface
	logger *slog.Logger
}

// NewVerificationEmailHandler creates a new VerificationEmailHandler.
func NewVerificationEmailHandler(dbAuth db.DbAuth, mailer mail.MailerInterface, logger *slog.Logger) *VerificationEmailHandler {
	return &VerificationEmailHandler{
		db:     dbAuth,
		mailer: mailer,
		logger: logger.With("job_handler", "verification_email"),
	}
}

// Handle implements the executor.JobHandler interface.
func (h *VerificationEmailHandler) Handle(ctx context.Context, job db.Job) error {
	var payload queue.PayloadVerificationEmail
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse verification email payload: %w", err)
	}

	var extra queue.PayloadExtraCode
	if err := json.Unmarshal(job.PayloadExtra, &extra); err != nil {
		return fmt.Errorf("failed to parse verification email payload extra: %w", err)
	}
	if extra.Code == "" {
		return fmt.Errorf("verification email job carries no code")
	}

	user, err := h.db.GetUserByEmail(payload.Email)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user not found for email: %s", payload.Email)
	}

	// The user may have verified through an earlier code while this job
	// waited in the queue.
	if user.Verified {
		h.logger.Info("user already verified, skipping email", "email", payload.Email)
		return nil
	}

	if err := h.mailer.SendVerificationCodeEmail(ctx, user.Email, extra.Code); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	h.logger.Info("sent verification email", "email", user.Email)
	return nil
}
