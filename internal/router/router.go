// Package router resolves paths against an ordered route table.
//
// Routes are evaluated top to bottom and the first match wins. A pattern is a list of
// "/"-separated segments where
//   - a literal segment must match exactly
//   - ":name" captures one segment
//   - a final "**" matches any remainder, including nothing
//
// Trailing slashes are ignored on both patterns and paths. The same table drives the
// web server and the TUI's go-to-path prompt.
package router

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoRoute is returned by [Table.Resolve] when nothing matches.
var ErrNoRoute = errors.New("no route matches path")

// Params holds the captured ":name" segments.
type Params map[string]string

// Match is the result of a successful [Table.Resolve].
type Match[T any] struct {
	Pattern string
	Target  T
	Params  Params
	// RedirectTo is set when the matching route is a redirect.
	RedirectTo string
}

// IsRedirect reports whether the match is a redirect.
func (m Match[T]) IsRedirect() bool {
	return m.RedirectTo != ""
}

// Param returns the named capture or "".
func (m Match[T]) Param(name string) string {
	return m.Params[name]
}

// IntParam parses the named capture as a positive integer.
func (m Match[T]) IntParam(name string) (int64, error) {
	raw, ok := m.Params[name]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", name)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("parameter %q must be a positive integer, got %q", name, raw)
	}
	return n, nil
}

type route[T any] struct {
	pattern  string
	segments []string
	target   T
	redirect string
}

// Table is an ordered route table. The zero value is empty and ready to use.
type Table[T any] struct {
	routes []route[T]
}

// New returns an empty [Table].
func New[T any]() *Table[T] {
	return &Table[T]{}
}

// Add appends a route to target.
func (t *Table[T]) Add(pattern string, target T) *Table[T] {
	t.routes = append(t.routes, route[T]{pattern: pattern, segments: split(pattern), target: target})
	return t
}

// Redirect appends a route that resolves to a redirect to location.
func (t *Table[T]) Redirect(pattern, location string) *Table[T] {
	t.routes = append(t.routes, route[T]{pattern: pattern, segments: split(pattern), redirect: location})
	return t
}

// Len returns the number of routes.
func (t *Table[T]) Len() int {
	return len(t.routes)
}

// Patterns returns the route patterns in evaluation order.
func (t *Table[T]) Patterns() []string {
	out := make([]string, len(t.routes))
	for i, r := range t.routes {
		out[i] = r.pattern
	}
	return out
}

// Resolve returns the first route matching path. Any query string is ignored.
func (t *Table[T]) Resolve(path string) (Match[T], error) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	segments := split(path)

	for _, r := range t.routes {
		if params, ok := match(r.segments, segments); ok {
			return Match[T]{
				Pattern:    r.pattern,
				Target:     r.target,
				Params:     params,
				RedirectTo: r.redirect,
			}, nil
		}
	}
	return Match[T]{}, fmt.Errorf("%w: %s", ErrNoRoute, path)
}

func match(pattern, path []string) (Params, bool) {
	params := Params{}
	for i, seg := range pattern {
		if seg == "**" && i == len(pattern)-1 {
			return params, true
		}
		if i >= len(path) {
			return nil, false
		}
		switch {
		case strings.HasPrefix(seg, ":") && len(seg) > 1:
			params[seg[1:]] = path[i]
		case seg != path[i]:
			return nil, false
		}
	}
	if len(pattern) != len(path) {
		return nil, false
	}
	return params, true
}

func split(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
