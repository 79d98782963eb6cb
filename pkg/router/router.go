package router

import (
	"context"
	"net/http"

	"github.com/arbuzhub/casino-backend/pkg/xcontext"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)
type MiddlewareFunc func(ctx context.Context, r *http.Request) (context.Context, error)

type Router struct {
	mux    *http.ServeMux
	ctx    context.Context
	before []MiddlewareFunc
}

// New creates a router whose handlers run on top of the given base context,
// which carries the database, logger, and configs.
func New(ctx context.Context) *Router {
	return &Router{mux: http.NewServeMux(), ctx: ctx}
}

// Branch returns a router sharing the same mux but with an independent
// middleware chain.
func (r *Router) Branch() *Router {
	before := make([]MiddlewareFunc, len(r.before))
	copy(before, r.before)
	return &Router{mux: r.mux, ctx: r.ctx, before: before}
}

func (r *Router) Before(m MiddlewareFunc) {
	r.before = append(r.before, m)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.mux.HandleFunc(pattern, handler)
}

func (r *Router) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: xcontext.Configs(r.ctx).ApiServer.AllowCORS,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return c.Handler(r.mux)
}
