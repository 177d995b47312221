// Package middleware holds the handler decorators the router stacks.
package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

// Chain runs its middlewares in order: the first one sees the request first.
type Chain []Middleware

// New builds a Chain, skipping nil entries so optional middlewares can be
// passed unconditionally.
func New(mws ...Middleware) Chain {
	c := make(Chain, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			c = append(c, mw)
		}
	}
	return c
}

func (c Chain) Then(h http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}

func (c Chain) ThenFunc(fn http.HandlerFunc) http.Handler {
	return c.Then(fn)
}
