package server

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/desertthunder/lyrx/internal/router"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Patterns live in one ordered [router.Table] and the first matching pattern wins.
// Each pattern holds one handler per method; a method with no handler gets a 405.
// Captured ":name" segments are readable through [PathParam].
type BasicRouter struct {
	table       *router.Table[*endpoint]
	patterns    map[string]*endpoint
	middlewares []Middleware
}

type endpoint struct {
	methods map[string]http.Handler
}

func (e *endpoint) allowed() string {
	methods := make([]string, 0, len(e.methods))
	for m := range e.methods {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		table:       router.New[*endpoint](),
		patterns:    make(map[string]*endpoint),
		middlewares: []Middleware{},
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path pattern.
//
// A pattern keeps the position of its first registration. Middleware is applied once,
// around the whole router.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	ep, ok := r.patterns[path]
	if !ok {
		ep = &endpoint{methods: make(map[string]http.Handler)}
		r.patterns[path] = ep
		r.table.Add(path, ep)
	}
	ep.methods[strings.ToUpper(method)] = handler
}

// HandleFunc registers a handler function for the specified HTTP method and path pattern.
func (r *BasicRouter) HandleFunc(method, path string, fn http.HandlerFunc) {
	r.Handle(method, path, fn)
}

// Handler registers a custom Handler implementation.
//
// All routes returned by [Handler.Routes] are registered with this handler.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.Handle(route.Method, route.Pattern, handler)
	}
}

// Redirect registers a route answering every method with a 302 to location.
func (r *BasicRouter) Redirect(path, location string) {
	r.table.Redirect(path, location)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Apply(http.HandlerFunc(r.dispatch)).ServeHTTP(w, req)
}

func (r *BasicRouter) dispatch(w http.ResponseWriter, req *http.Request) {
	m, err := r.table.Resolve(req.URL.Path)
	if err != nil {
		http.NotFound(w, req)
		return
	}
	if m.IsRedirect() {
		http.Redirect(w, req, m.RedirectTo, http.StatusFound)
		return
	}

	method := req.Method
	if method == http.MethodHead {
		if _, ok := m.Target.methods[method]; !ok {
			method = http.MethodGet
		}
	}
	handler, ok := m.Target.methods[method]
	if !ok {
		w.Header().Set("Allow", m.Target.allowed())
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	handler.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), paramsKey{}, m.Params)))
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}

type paramsKey struct{}

// PathParam returns the ":name" segment captured for req, or "".
func PathParam(req *http.Request, name string) string {
	params, _ := req.Context().Value(paramsKey{}).(router.Params)
	return params[name]
}
