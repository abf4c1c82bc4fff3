// Package httprouter adapts julienschmidt/httprouter to the router.Router
// interface.
package httprouter

import (
	"net/http"

	jshttprouter "github.com/julienschmidt/httprouter"

	"github.com/quillhq/quill/router"
)

type Router struct {
	rt *jshttprouter.Router
}

func New() router.Router {
	return &Router{rt: jshttprouter.New()}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.rt.ServeHTTP(w, req)
}

// Handle registers a handler under a "METHOD /path" endpoint. Path parameters
// use httprouter syntax (":id"); they are copied into the request's stdlib
// path values so handlers read them with r.PathValue and stay mux-agnostic.
func (r *Router) Handle(endpoint string, handler http.Handler) {
	method, path, err := router.SplitEndpoint(endpoint)
	if err != nil {
		panic(err)
	}
	r.rt.Handle(method, path, func(w http.ResponseWriter, req *http.Request, params jshttprouter.Params) {
		for _, p := range params {
			req.SetPathValue(p.Key, p.Value)
		}
		handler.ServeHTTP(w, req)
	})
}
