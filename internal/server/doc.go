// Package server provides HTTP routing, middleware and the listener for the web interface.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation resolves paths through an ordered [router.Table]: the first matching
// pattern wins, ":name" segments are captured (see [PathParam]) and a trailing "/**" redirect acts as the
// catch-all. Methods are filtered per pattern.
//
// # Middleware
//
//   - [RequestID] : assigns a uuid per request and echoes it in X-Request-ID
//   - [Logging] : one structured log line per request
//   - [Recover] : converts handler panics into a 500
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Server
//
// [Server] runs the router until its context is cancelled, then shuts down gracefully.
package server
