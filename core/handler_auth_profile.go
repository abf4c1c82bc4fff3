package core

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/quillhq/quill/db"
)

// UpdateProfileHandler updates name, email or profile picture of the
// authenticated user. Fields absent from the request stay untouched.
// Endpoint: PATCH /api/v1/auth/profile
// Authenticated: Yes
// Allowed Mimetype: application/json
//
// Changing the email resets the verified flag and, through the per-user
// signing key, invalidates outstanding sessions. Re-submitting the current
// email is a no-op and keeps the verification state.
func (a *App) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
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
		Name       *string `json:"name"`
		Email      *string `json:"email"`
		ProfilePic *string `json:"profile_pic"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	updated := *user

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeJsonError(w, errorMissingFields)
			return
		}
		updated.Name = name
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if err := ValidateEmail(email); err != nil {
			writeJsonError(w, errorInvalidEmailFormat)
			return
		}
		if email != user.Email {
			updated.Email = email
			updated.Verified = false
		}
	}

	if req.ProfilePic != nil {
		pic := strings.TrimSpace(*req.ProfilePic)
		if pic != "" {
			file, err := a.DbFile().GetFileById(pic)
			if err != nil {
				writeJsonError(w, errorServiceUnavailable)
				return
			}
			if file == nil {
				writeJsonError(w, errorNotFound)
				return
			}
		}
		updated.ProfilePic = pic
	}

	if err := a.DbAuth().UpdateProfile(updated); err != nil {
		if errors.Is(err, db.ErrConstraintUnique) {
			writeJsonError(w, errorEmailConflict)
			return
		}
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	writeUserResponse(w, a.userRecordWithPic(&updated))
}

// MeHandler returns the authenticated user's own record.
// Endpoint: GET /api/v1/auth/me
// Authenticated: Yes
func (a *App) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		writeJsonError(w, errorJwtInvalidToken)
		return
	}

	writeUserResponse(w, a.userRecordWithPic(user))
}

// userRecordWithPic builds the client projection and resolves the profile
// picture reference through the file cache.
func (a *App) userRecordWithPic(user *db.User) UserRecord {
	record := NewUserRecord(user)
	if user.ProfilePic != "" {
		record.ProfilePic = newFileRecord(a.fileById(user.ProfilePic))
	}
	return record
}

func writeUserResponse(w http.ResponseWriter, record UserRecord) {
	writeJsonWithData(w, JsonWithData{
		JsonBasic: JsonBasic{
			Code:    http.StatusOK,
			Status:  true,
			Message: "OK",
		},
		Data: map[string]any{"user": record},
	})
}
