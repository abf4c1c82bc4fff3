package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/queue"
)

// RequestRecoveryCodeHandler issues a fresh password recovery code.
// Endpoint: POST /api/v1/auth/password/forgot
// Authenticated: No
// Allowed Mimetype: application/json
//
// Recovery codes are an independent channel from verification codes, issuing
// one never touches the other. Delivery is queued with the same
// cooldown-bucket dedup as verification emails.
func (a *App) RequestRecoveryCodeHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeJsonError(w, errorMissingFields)
		return
	}
	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidEmailFormat)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(req.Email)
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if user == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	code := crypto.RandomDigits(VerificationCodeLength)
	if err := a.DbAuth().SetRecoveryCode(user.ID, code); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJsonError(w, errorNotFound)
			return
		}
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	cfg := a.Config()
	payload, _ := json.Marshal(queue.PayloadRecoveryEmail{
		Email:          user.Email,
		CooldownBucket: queue.CoolDownBucket(cfg.RateLimits.PasswordResetCooldown.Duration, time.Now()),
	})
	payloadExtra, _ := json.Marshal(queue.PayloadExtraCode{Code: code})

	err = a.DbQueue().InsertJob(db.Job{
		JobType:      queue.JobTypeRecoveryEmail,
		Payload:      payload,
		PayloadExtra: payloadExtra,
	})
	if err != nil {
		if errors.Is(err, db.ErrConstraintUnique) {
			writeJsonError(w, errorCodeAlreadyRequested)
			return
		}
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okRecoveryCodeSent)
}

// RecoverPasswordHandler consumes a recovery code and sets a new password.
// Endpoint: POST /api/v1/auth/password/recover
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) RecoverPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Code     string `json:"code"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" || req.Password == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	if len(req.Password) < MinPasswordLength {
		writeJsonError(w, errorPasswordComplexity)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(req.Email)
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}
	if user == nil {
		writeJsonError(w, errorNotFound)
		return
	}

	hashedPassword, err := crypto.GenerateHash(req.Password)
	if err != nil {
		writeJsonError(w, errorInternal)
		return
	}

	// Guarded update: the new hash lands only if the code still matches, and
	// the code is cleared in the same statement. The hash change also rotates
	// the per-user signing key, invalidating every outstanding session.
	if err := a.DbAuth().RecoverPassword(user.ID, req.Code, hashedPassword); err != nil {
		if errors.Is(err, db.ErrCodeMismatch) {
			writeJsonError(w, errorInvalidCode)
			return
		}
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okPasswordRecovered)
}
