package core

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db"
)

// Authenticator resolves the user behind a request. On failure the returned
// jsonResponse is the precomputed body to send; the error is for callers
// that branch rather than write.
type Authenticator interface {
	Authenticate(r *http.Request) (*db.User, jsonResponse, error)
}

// DefaultAuthenticator verifies Bearer session tokens. The signing key of a
// token is derived from the user's stored credentials, so verification needs
// the user row first: claims are parsed unverified, sanity checked, the user
// fetched, and only then is the signature fully verified.
type DefaultAuthenticator struct {
	dbAuth         db.DbAuth
	logger         *slog.Logger
	configProvider *config.Provider
}

func NewDefaultAuthenticator(dbAuth db.DbAuth, logger *slog.Logger, configProvider *config.Provider) *DefaultAuthenticator {
	return &DefaultAuthenticator{
		dbAuth:         dbAuth,
		logger:         logger,
		configProvider: configProvider,
	}
}

var errAuthFailed = errors.New("authentication failed")

func (a *DefaultAuthenticator) Authenticate(r *http.Request) (*db.User, jsonResponse, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errorNoAuthHeader, errAuthFailed
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, errorInvalidTokenFormat, errAuthFailed
	}

	// Parse unverified to discard garbage before touching the database.
	claims, err := crypto.ParseJwtUnverified(tokenString)
	if err != nil {
		return nil, errorJwtInvalidToken, errAuthFailed
	}

	if err := crypto.ValidateSessionClaims(claims); err != nil {
		if errors.Is(err, crypto.ErrTokenTooOld) {
			return nil, errorJwtTokenExpired, errAuthFailed
		}
		return nil, errorJwtInvalidToken, errAuthFailed
	}

	userID := claims[crypto.ClaimUserID].(string)
	user, err := a.dbAuth.GetUserById(userID)
	if err != nil || user == nil {
		return nil, errorJwtInvalidToken, errAuthFailed
	}

	cfg := a.configProvider.Get()
	signingKey, err := crypto.NewJwtSigningKeyWithCredentials(user.Email, user.Password, []byte(cfg.Jwt.AuthSecret))
	if err != nil {
		// Config problem (short secret) or corrupt user data, not the
		// client's fault.
		a.logger.Error("failed to derive session signing key", "user_id", userID, "error", err)
		return nil, errorTokenGeneration, errAuthFailed
	}

	if _, err := crypto.ParseJwt(tokenString, signingKey); err != nil {
		switch {
		case errors.Is(err, crypto.ErrJwtTokenExpired):
			return nil, errorJwtTokenExpired, errAuthFailed
		case errors.Is(err, crypto.ErrJwtInvalidSigningMethod):
			return nil, errorJwtInvalidSignMethod, errAuthFailed
		default:
			return nil, errorJwtInvalidToken, errAuthFailed
		}
	}

	return user, jsonResponse{}, nil
}
