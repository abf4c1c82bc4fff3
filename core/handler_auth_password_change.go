package core

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
)

// ChangePasswordHandler changes the password of the authenticated user.
// Endpoint: PATCH /api/v1/auth/password/change
// Authenticated: Yes
// Allowed Mimetype: application/json
//
// The stored hash change rotates the per-user signing key, so the session
// token used for this request stops working along with every other one.
func (a *App) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	if len(req.NewPassword) < MinPasswordLength {
		writeJsonError(w, errorPasswordComplexity)
		return
	}

	if !crypto.CheckPassword(req.OldPassword, user.Password) {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	if req.NewPassword == req.OldPassword {
		writeJsonError(w, errorSamePassword)
		return
	}

	hashedPassword, err := crypto.GenerateHash(req.NewPassword)
	if err != nil {
		writeJsonError(w, errorInternal)
		return
	}

	if err := a.DbAuth().UpdatePassword(user.ID, hashedPassword); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeJsonError(w, errorNotFound)
			return
		}
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeJsonOk(w, okPasswordChanged)
}
