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

// RecoveryEmailHandler delivers the 6-digit password recovery code stored
// for a user.
type RecoveryEmailHandler struct {
	db     db.DbAuth
	mailer mail.MailerInterface
	logger *slog.Logger
}

// NewRecoveryEmailHandler creates a new RecoveryEmailHandler.
func NewRecoveryEmailHandler(dbAuth db.DbAuth, mailer mail.MailerInterface, logger *slog.Logger) *RecoveryEmailHandler {
	return &RecoveryEmailHandler{
		db:     dbAuth,
		mailer: mailer,
		logger: logger.With("job_handler", "recovery_email"),
	}
}

// Handle implements the executor.JobHandler interface.
func (h *RecoveryEmailHandler) Handle(ctx context.Context, job db.Job) error {
	var payload queue.PayloadRecoveryEmail
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to parse recovery email payload: %w", err)
	}

	var extra queue.PayloadExtraCode
	if err := json.Unmarshal(job.PayloadExtra, &extra); err != nil {
		return fmt.Errorf("failed to parse recovery email payload extra: %w", err)
	}
	if extra.Code == "" {
		return fmt.Errorf("recovery email job carries no code")
	}

	user, err := h.db.GetUserByEmail(payload.Email)
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user not found for email: %s", payload.Email)
	}

	// The stored code may have been consumed or replaced while this job
	// waited in the queue; the guarded update on recovery makes a stale
	// email harmless, so send whatever the job carries.
	if err := h.mailer.SendRecoveryCodeEmail(ctx, user.Email, extra.Code); err != nil {
		return fmt.Errorf("failed to send recovery email: %w", err)
	}

	h.logger.Info("sent recovery email", "email", user.Email)
	return nil
}
