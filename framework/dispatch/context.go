package dispatch

import (
	"github.com/strut-web/strut/framework/container"
	"github.com/strut-web/strut/framework/http"
	"github.com/strut-web/strut/framework/routing"
)

// Context carries one request through the lifecycle. It is exclusively owned
// by the dispatch that created it; nothing here is safe for concurrent use.
type Context struct {
	Request  *http.Request
	Response *http.Response
	Params   routing.Params

	view   *View
	scope  *container.Scope
	deps   map[string]any
	values map[string]any
	early  bool
	state  State
}

// NewContext builds a fresh Context around a request and its in-progress
// response.
func NewContext(req *http.Request, res *http.Response) *Context {
	return &Context{Request: req, Response: res}
}

// View returns the matched view, nil before routing completes.
func (ctx *Context) View() *View { return ctx.view }

// Scope returns the request's dependency scope, nil before Resolving.
func (ctx *Context) Scope() *container.Scope { return ctx.scope }

// State returns the current lifecycle state.
func (ctx *Context) State() State { return ctx.state }

// EarlyReturn marks the response as final: the remaining pipeline is skipped
// and already-entered after hooks unwind.
func (ctx *Context) EarlyReturn() { ctx.early = true }

// Returned reports whether a hook requested an early return.
func (ctx *Context) Returned() bool { return ctx.early }

// Dep returns a dependency resolved from the view's Uses declaration.
func (ctx *Context) Dep(id string) any { return ctx.deps[id] }

// Resolve resolves any registered dependency through the request's scope.
func (ctx *Context) Resolve(id string) (any, error) {
	if ctx.scope == nil {
		return nil, container.ErrScopeClosed
	}
	return ctx.scope.Resolve(id)
}

// Set stores an arbitrary per-request value, visible to later hooks.
func (ctx *Context) Set(key string, value any) {
	if ctx.values == nil {
		ctx.values = make(map[string]any)
	}
	ctx.values[key] = value
}

// Get returns a per-request value stored with Set.
func (ctx *Context) Get(key string) (any, bool) {
	v, ok := ctx.values[key]
	return v, ok
}
