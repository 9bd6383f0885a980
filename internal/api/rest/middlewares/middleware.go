package middlewares

import "net/http"

type Middleware interface {
	Handle(next http.Handler) http.Handler
}

// MiddlewareFunc adapts a plain wrapping function to Middleware.
type MiddlewareFunc func(next http.Handler) http.Handler

func (f MiddlewareFunc) Handle(next http.Handler) http.Handler {
	return f(next)
}

// Chain applies middlewares so that the first one runs outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i].Handle(h)
	}
	return h
}
