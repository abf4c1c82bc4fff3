package router

import (
	"net/http"
)

// Chain builds a handler from a base handler and a middleware stack.
type Chain struct {
	handler     http.Handler
	middlewares []func(http.Handler) http.Handler
}

// NewChain creates a Chain around the base handler.
func NewChain(h http.Handler) *Chain {
	if h == nil {
		panic("chain handler cannot be nil")
	}
	return &Chain{
		handler:     h,
		middlewares: make([]func(http.Handler) http.Handler, 0),
	}
}

// WithMiddleware adds one or more middlewares to the chain. Middlewares
// execute in the order given, left to right, before the handler:
//
//	NewChain(h).WithMiddleware(mw1, mw2)
//
// runs mw1, then mw2, then h. Same semantics as justinas/alice, matching the
// natural reading order of the registration code.
func (c *Chain) WithMiddleware(middlewares ...func(http.Handler) http.Handler) *Chain {
	for _, mw := range middlewares {
		c.middlewares = append([]func(http.Handler) http.Handler{mw}, c.middlewares...)
	}
	return c
}

// Handler returns the handler with all middlewares applied.
func (c *Chain) Handler() http.Handler {
	handler := c.handler
	for _, mw := range c.middlewares {
		handler = mw(handler)
	}
	return handler
}
