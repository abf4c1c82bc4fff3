package router

import (
	"fmt"
	"net/http"
	"strings"
)

// Router registers handlers under "METHOD /path" endpoints and serves them.
// The concrete implementation lives in router/httprouter; the indirection
// keeps the application free of a hard dependency on one mux.
type Router interface {
	http.Handler

	// Handle registers a handler for an endpoint of the form "METHOD /path".
	// Panics on a malformed endpoint, registration errors are programmer
	// errors.
	Handle(endpoint string, handler http.Handler)
}

// SplitEndpoint separates "METHOD /path" into its two parts.
func SplitEndpoint(endpoint string) (method, path string, err error) {
	method, path, found := strings.Cut(endpoint, " ")
	if !found || method == "" || !strings.HasPrefix(path, "/") {
		return "", "", fmt.Errorf("malformed endpoint %q, want \"METHOD /path\"", endpoint)
	}
	return method, path, nil
}
