package core

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// SignupHandler handles password-based user registration.
// Endpoint: POST /api/v1/auth/signup
// Authenticated: No
// Allowed Mimetype: application/json
func (a *App) SignupHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidEmailFormat)
		return
	}

	if len(req.Password) < MinPasswordLength {
		writeJsonError(w, errorPasswordComplexity)
		return
	}

	// Hash before storage, the plaintext never leaves this handler.
	hashedPassword, err := crypto.GenerateHash(req.Password)
	if err != nil {
		writeJsonError(w, errorInternal)
		return
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = db.DefaultRole
	}

	newUser := db.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashedPassword,
		Role:     role,
		Verified: false,
	}

	retrievedUser, err := a.DbAuth().CreateUserWithPassword(newUser)
	if err != nil {
		writeJsonError(w, errorServiceUnavailable)
		return
	}

	// On email conflict the insert left the existing row untouched and
	// returned it; the differing password hash exposes the conflict.
	if retrievedUser.Password != newUser.Password {
		writeJsonError(w, errorEmailConflict)
		return
	}

	writeJsonOk(w, okSignup)
}
