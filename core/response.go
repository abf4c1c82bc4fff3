package core

import (
	"encoding/json"
	"net/http"
)

// MimeTypeJSON is the only request body type the API accepts.
const MimeTypeJSON = "application/json"

// jsonResponse is a fully rendered response: HTTP status plus the marshaled
// envelope bytes. Static responses are precomputed once at package init so
// handlers only copy bytes on the hot path.
type jsonResponse struct {
	status int
	body   []byte
}

// JsonBasic is the response envelope every endpoint returns. Code mirrors the
// HTTP status, Status is the success flag clients branch on.
type JsonBasic struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// JsonWithData extends the envelope with a payload object.
type JsonWithData struct {
	JsonBasic
	Data any `json:"data,omitempty"`
}

// writeJsonWithData marshals and writes an envelope carrying dynamic data.
func writeJsonWithData(w http.ResponseWriter, resp JsonWithData) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.Code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Headers are already sent; nothing recoverable remains.
		return
	}
}

// writeJsonOk writes a precomputed success response.
func writeJsonOk(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}

// writeJsonError writes a precomputed error response.
func writeJsonError(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}
