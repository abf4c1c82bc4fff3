package core

import (
	"errors"
	"net/http"
	"strings"
)

// Validator defines request validation operations shared by handlers.
type Validator interface {
	// ContentType checks the request's Content-Type against the allowed type.
	// On mismatch the returned jsonResponse is the precomputed 415 body.
	ContentType(r *http.Request, allowedType string) (jsonResponse, error)
}

type DefaultValidator struct{}

func NewValidator() Validator {
	return &DefaultValidator{}
}

var errInvalidContentType = errors.New("invalid content type")

// ContentType tolerates parameters after the media type, e.g.
// "application/json; charset=utf-8".
func (v *DefaultValidator) ContentType(r *http.Request, allowedType string) (jsonResponse, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return errorInvalidContentType, errInvalidContentType
	}

	mediaType, _, _ := strings.Cut(contentType, ";")
	if strings.TrimSpace(mediaType) != allowedType {
		return errorInvalidContentType, errInvalidContentType
	}

	return jsonResponse{}, nil
}
