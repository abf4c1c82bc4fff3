package core

import (
	"net/http"
)

// HeadersJson is the header set applied to every API response.
var HeadersJson = map[string]string{

	"Content-Type": "application/json; charset=utf-8",

	// Ensure the browser respects the declared content type strictly and
	// never sniffs a different one out of the body.
	"X-Content-Type-Options": "nosniff",

	// Responses carry credentials and codes; never cached anywhere.
	// no-store alone is enough, the rest guards against downstream
	// misinterpretation.
	"Cache-Control": "no-store, no-cache, must-revalidate",

	// API responses are never documents; refuse framing outright.
	"X-Frame-Options": "DENY",

	// frame-ancestors 'none' is the modern X-Frame-Options: DENY;
	// default-src 'none' asserts the response is not an active document.
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

// setHeaders applies one or more sets of headers to the response writer.
// Later maps overwrite earlier maps on key conflicts.
func setHeaders(w http.ResponseWriter, headers ...map[string]string) {
	for _, headerMap := range headers {
		for key, value := range headerMap {
			w.Header().Set(key, value)
		}
	}
}
