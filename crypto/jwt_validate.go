package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MaxTokenAge is a hard ceiling on the age of any accepted token, regardless
// of the exp claim it carries. A stolen signing key cannot be used to mint
// tokens older than this window.
const MaxTokenAge = 30 * 24 * time.Hour

var (
	// ErrInvalidClaimFormat is returned when a required claim is missing or malformed
	ErrInvalidClaimFormat = errors.New("invalid claim format")
	// ErrTokenTooOld is returned when the iat claim exceeds MaxTokenAge
	ErrTokenTooOld = errors.New("token too old")
)

// ValidateClaimIssuedAt enforces presence and sanity of the iat claim.
// The parser validates iat only when present, so the check lives here.
func ValidateClaimIssuedAt(claims jwt.MapClaims) error {
	iatRaw, ok := claims[ClaimIssuedAt]
	if !ok {
		return fmt.Errorf("%w: missing iat claim", ErrInvalidClaimFormat)
	}
	iat, ok := iatRaw.(float64)
	if !ok {
		return fmt.Errorf("%w: iat claim is not numeric", ErrInvalidClaimFormat)
	}
	issuedAt := time.Unix(int64(iat), 0)
	if time.Since(issuedAt) > MaxTokenAge {
		return ErrTokenTooOld
	}
	return nil
}

// ValidateClaimUserID enforces presence of the custom user_id claim.
func ValidateClaimUserID(claims jwt.MapClaims) error {
	id, ok := claims[ClaimUserID].(string)
	if !ok || id == "" {
		return fmt.Errorf("%w: missing user_id", ErrInvalidClaimFormat)
	}
	return nil
}

// ValidateSessionClaims runs every check a session token must pass before the
// signature can even be verified (signature verification needs the user row,
// and the user row lookup needs a trustworthy-looking user_id).
func ValidateSessionClaims(claims jwt.MapClaims) error {
	if err := ValidateClaimIssuedAt(claims); err != nil {
		return err
	}
	return ValidateClaimUserID(claims)
}
