package core

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quillhq/quill/crypto"
)

// SigninHandler handles password-based authentication.
// Endpoint: POST /api/v1/auth/signin
// Authenticated: No
// Allowed Mimetype: application/json
//
// Unknown email and wrong password produce the same 401, an attacker cannot
// probe which addresses exist.
func (a *App) SigninHandler(w http.ResponseWriter, r *http.Request) {
	if resp, err := a.Validator().ContentType(r, MimeTypeJSON); err != nil {
		writeJsonError(w, resp)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonError(w, errorInvalidRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeJsonError(w, errorMissingFields)
		return
	}

	if err := ValidateEmail(req.Email); err != nil {
		writeJsonError(w, errorInvalidEmailFormat)
		return
	}

	user, err := a.DbAuth().GetUserByEmail(req.Email)
	if err != nil || user == nil {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	if !crypto.CheckPassword(req.Password, user.Password) {
		writeJsonError(w, errorInvalidCredentials)
		return
	}

	cfg := a.Config()
	token, _, err := crypto.NewJwtSessionToken(user.ID, user.Email, user.Password, user.Role, []byte(cfg.Jwt.AuthSecret), cfg.Jwt.AuthTokenDuration.Duration)
	if err != nil {
		writeJsonError(w, errorTokenGeneration)
		return
	}

	writeAuthResponse(w, token, int(cfg.Jwt.AuthTokenDuration.Duration.Seconds()), user)
}
