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

// VerificationCodeLength is the length of email verification and password
// recovery codes.
const VerificationCodeLength = 6

// RequestVerificationCodeHandler issues a fresh email verification code.
// Endpoint: POST /api/v1/auth/verify/request
// Authenticated: No
// Allowed Mimetype: application/json
//
// The code is stored synchronously; only the email delivery goes through the
// queue. Requests within the same cooldown window collapse into one queued
// job via the unique (job_type, payload) index.
func (a *App) RequestVerificationCodeHandler(w http.ResponseWriter, r *http.Request) {
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

	if user.Verified {
		writeJsonError(w, errorAlreadyVerified)
		return
	}

	code := crypto.RandomDigits(VerificationCodeLength)
	if err := a.DbAuth().SetVerificationCode(user.ID, code); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJsonError(w, errorNotFound)
			return
		}
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	cfg := a.Config()
	payload, _ := json.Marshal(queue.PayloadVerificationEmail{
		Email:          user.Email,
		CooldownBucket: queue.CoolDownBucket(cfg.RateLimits.EmailVerificationCooldown.Duration, time.Now()),
	})
	payloadExtra, _ := json.Marshal(queue.PayloadExtraCode{Code: code})

	err = a.DbQueue().InsertJob(db.Job{
		JobType:      queue.JobTypeVerificationEmail,
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

	writeJsonOk(w, okVerificationCodeSent)
}

// ConfirmVerificationHandler consumes a verification code and marks the user
// verified.
// Endpoint: POST /api/v1/auth/verify/confirm
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) ConfirmVerificationHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		writeJsonError(w, errorMissingFields)
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

	// The guarded update clears the code in the same statement that checks
	// it, a consumed code can never be replayed: an already verified user
	// has no stored code left, so the update matches nothing.
	if err := a.DbAuth().ConfirmVerification(user.ID, req.Code); err != nil {
		if errors.Is(err, db.ErrCodeMismatch) {
			writeJsonError(w, errorInvalidCode)
			return
		}
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okEmailVerified)
}
