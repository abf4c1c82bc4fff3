package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinKeyLength is the minimum required length for JWT signing keys.
	// 32 bytes (256 bits) is the minimum recommended length for HMAC-SHA256 keys
	// to provide sufficient security against brute force attacks.
	MinKeyLength = 32

	// JWT claim constants
	ClaimIssuedAt  = "iat"     // JWT Issued At claim key
	ClaimExpiresAt = "exp"     // JWT Expiration Time claim key
	ClaimUserID    = "user_id" // JWT User ID claim key
	ClaimRole      = "role"    // JWT user role claim key
)

var (
	// ErrJwtTokenExpired is returned when the token has expired
	ErrJwtTokenExpired = errors.New("token expired")
	// ErrJwtInvalidToken is returned when the token is invalid
	ErrJwtInvalidToken = errors.New("invalid token")
	// ErrJwtInvalidSigningMethod is returned when the signing method is not HS256
	ErrJwtInvalidSigningMethod = errors.New("unexpected signing method")
	// ErrJwtInvalidSecretLength is returned for invalid secret lengths
	ErrJwtInvalidSecretLength = errors.New("invalid secret length")
)

// ParseJwt verifies and parses a JWT and returns its claims.
func ParseJwt(token string, verificationKey []byte) (jwt.MapClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	parsedToken, err := parser.Parse(token, func(t *jwt.Token) (any, error) {
		return verificationKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrJwtTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrJwtInvalidSigningMethod
		}
		return nil, fmt.Errorf("%w: %w", ErrJwtInvalidToken, err)
	}

	if claims, ok := parsedToken.Claims.(jwt.MapClaims); ok && parsedToken.Valid {
		return claims, nil
	}

	return nil, ErrJwtInvalidToken
}

// ParseJwtUnverified parses a JWT without verifying the signature.
// Used to extract claims before the per-user signing key can be derived;
// callers must still fully verify the token with ParseJwt.
func ParseJwtUnverified(token string) (jwt.MapClaims, error) {
	parser := jwt.NewParser()
	parsedToken, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJwtInvalidToken, err)
	}
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrJwtInvalidToken
	}
	return claims, nil
}

// NewJwt generates a new JWT token with the provided claims.
// payload is jwt.MapClaims which is just map[string]any.
func NewJwt(payload jwt.MapClaims, signingKey []byte, duration time.Duration) (string, time.Time, error) {
	if len(signingKey) < MinKeyLength {
		return "", time.Time{}, ErrJwtInvalidSecretLength
	}

	now := time.Now()
	expirationTime := now.Add(duration)
	payload[ClaimIssuedAt] = now.Unix()
	payload[ClaimExpiresAt] = expirationTime.Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	tokenString, err := token.SignedString(signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expirationTime, nil
}

// NewJwtSessionToken creates a signed session token for a user. The signing
// key is derived from the user's credentials, so a password or email change
// invalidates every outstanding token for that user.
func NewJwtSessionToken(userID, email, passwordHash, role string, secret []byte, duration time.Duration) (string, time.Time, error) {
	signingKey, err := NewJwtSigningKeyWithCredentials(email, passwordHash, secret)
	if err != nil {
		return "", time.Time{}, err
	}

	claims := jwt.MapClaims{
		ClaimUserID: userID,
		ClaimRole:   role,
	}
	return NewJwt(claims, signingKey, duration)
}

// NewJwtSigningKeyWithCredentials creates a JWT signing key using HMAC-SHA256.
//
// It derives a unique key by combining user-specific data (email, passwordHash)
// with a server secret. Tokens are invalidated when the user's email or
// password changes, or globally by rotating the secret.
//
// Using HMAC prevents length-extension attacks, unlike simple hash
// concatenation. A null byte delimits the two inputs to prevent collisions.
func NewJwtSigningKeyWithCredentials(email, passwordHash string, secret []byte) ([]byte, error) {
	if email == "" || passwordHash == "" {
		return nil, ErrJwtInvalidToken
	}
	if len(secret) < MinKeyLength {
		return nil, ErrJwtInvalidSecretLength
	}

	h := hmac.New(sha256.New, secret)
	h.Write([]byte(email))
	h.Write([]byte{0})
	h.Write([]byte(passwordHash))

	return h.Sum(nil), nil
}
