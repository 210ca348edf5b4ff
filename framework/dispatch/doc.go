// Package dispatch is the request lifecycle kernel. A Dispatcher takes a
// Context through routing, pre-route middleware, dependency resolution,
// pre-handler hooks, the view's handler, and the after-hook unwind, routing
// errors through the view's OnException hook before falling back to a logged
// 500. The request's dependency scope is closed on every path out.
package dispatch
