package core

import (
	"encoding/json"
	"net/http"
)

// precomputeBasicResponse marshals a static envelope once. It runs during
// package initialization, so request handling never re-marshals the common
// success and error bodies.
func precomputeBasicResponse(status int, ok bool, message string) jsonResponse {
	basic := JsonBasic{
		Code:    status,
		Status:  ok,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

// Precomputed error and ok responses.
var (
	// errors
	errorInvalidRequest        = precomputeBasicResponse(http.StatusBadRequest, false, "The request contains invalid data")
	errorMissingFields         = precomputeBasicResponse(http.StatusBadRequest, false, "Required fields are missing")
	errorInvalidEmailFormat    = precomputeBasicResponse(http.StatusBadRequest, false, "Invalid email address")
	errorPasswordComplexity    = precomputeBasicResponse(http.StatusBadRequest, false, "Password must be at least 6 characters")
	errorEmailConflict         = precomputeBasicResponse(http.StatusBadRequest, false, "Email address is already registered")
	errorAlreadyVerified       = precomputeBasicResponse(http.StatusBadRequest, false, "Email is already verified")
	errorInvalidCode           = precomputeBasicResponse(http.StatusBadRequest, false, "Invalid or expired code")
	errorSamePassword          = precomputeBasicResponse(http.StatusBadRequest, false, "New password must differ from the current one")
	errorTitleConflict         = precomputeBasicResponse(http.StatusBadRequest, false, "Title is already in use")
	errorInvalidCredentials    = precomputeBasicResponse(http.StatusUnauthorized, false, "Invalid credentials provided")
	errorNoAuthHeader          = precomputeBasicResponse(http.StatusUnauthorized, false, "Authorization header is required")
	errorInvalidTokenFormat    = precomputeBasicResponse(http.StatusUnauthorized, false, "Invalid authorization token format")
	errorJwtTokenExpired       = precomputeBasicResponse(http.StatusUnauthorized, false, "Authentication token has expired")
	errorJwtInvalidSignMethod  = precomputeBasicResponse(http.StatusUnauthorized, false, "Invalid token signing method")
	errorJwtInvalidToken       = precomputeBasicResponse(http.StatusUnauthorized, false, "Invalid authentication token")
	errorNotFound              = precomputeBasicResponse(http.StatusNotFound, false, "Requested resource not found")
	errorInvalidContentType    = precomputeBasicResponse(http.StatusUnsupportedMediaType, false, "Unsupported media type")
	errorFileTooLarge          = precomputeBasicResponse(http.StatusRequestEntityTooLarge, false, "Uploaded file exceeds the size limit")
	errorCodeAlreadyRequested  = precomputeBasicResponse(http.StatusTooManyRequests, false, "A code was already requested recently, check your mailbox")
	errorTokenGeneration       = precomputeBasicResponse(http.StatusInternalServerError, false, "Failed to generate authentication token")
	errorInternal              = precomputeBasicResponse(http.StatusInternalServerError, false, "Something went wrong, please try again later")
	errorServiceUnavailable    = precomputeBasicResponse(http.StatusServiceUnavailable, false, "Service is temporarily unavailable")

	// oks
	okSignup               = precomputeBasicResponse(http.StatusCreated, true, "Account created, request a verification code to activate it")
	okVerificationCodeSent = precomputeBasicResponse(http.StatusOK, true, "Verification code will be sent to your email")
	okEmailVerified        = precomputeBasicResponse(http.StatusOK, true, "Email verified successfully")
	okRecoveryCodeSent     = precomputeBasicResponse(http.StatusOK, true, "Recovery code will be sent to your email")
	okPasswordRecovered    = precomputeBasicResponse(http.StatusOK, true, "Password updated, sign in with your new password")
	okPasswordChanged      = precomputeBasicResponse(http.StatusOK, true, "Password changed successfully")
	okDeleted              = precomputeBasicResponse(http.StatusOK, true, "Deleted successfully")
)
