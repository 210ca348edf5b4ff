package dispatch

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"

	"github.com/strut-web/strut/framework/container"
	strhttp "github.com/strut-web/strut/framework/http"
	"github.com/strut-web/strut/framework/routing"
)

// State tracks where a request is in the lifecycle.
type State int

const (
	StateRouting State = iota
	StatePreRoute
	StateResolving
	StatePreHandler
	StateHandling
	StatePostHandler
	StatePostMiddleware
	StateResponding
	StateExcepting
	StateDone
)

var stateNames = [...]string{
	"routing", "pre_route", "resolving", "pre_handler", "handling",
	"post_handler", "post_middleware", "responding", "excepting", "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// ErrNoResponse is raised when a handler returns without building any
// response.
var ErrNoResponse = errors.New("dispatch: handler produced no response")

// PanicError wraps a recovered panic from a hook or handler so it flows
// through the same error path as returned errors.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Dispatcher drives a request through the lifecycle: route matching,
// middleware, dependency resolution, the view's hooks, and error handling.
// One Dispatcher serves all requests; each Dispatch call owns its Context
// and Scope exclusively.
type Dispatcher struct {
	Matcher    *routing.Matcher
	Container  *container.Container
	Middleware *Chain
	Log        zerolog.Logger

	// Debug includes error detail in 500 bodies. Never enable in production.
	Debug bool

	// OnUnhandled, when set, observes errors that no view recovered from.
	OnUnhandled func(ctx *Context, err error)
}

// Dispatch runs one request to completion. Whatever path the request takes,
// the scope is closed before the state reaches done.
func (d *Dispatcher) Dispatch(ctx *Context) {
	defer func() {
		d.closeScope(ctx)
		ctx.state = StateDone
	}()
	d.run(ctx)
	ctx.state = StateResponding
}

func (d *Dispatcher) run(ctx *Context) {
	// Routing. Misses are outcomes, not errors: they synthesize a response
	// and go straight to responding.
	ctx.state = StateRouting
	match, err := d.Matcher.Lookup(ctx.Request.Method(), ctx.Request.Path())
	if err != nil {
		var mna *routing.MethodNotAllowedError
		switch {
		case errors.As(err, &mna):
			ctx.Response.SetHeader("Allow", strings.Join(mna.Allow, ", "))
			ctx.Response.Error(http.StatusMethodNotAllowed, "Method not allowed.")
		default:
			ctx.Response.Error(http.StatusNotFound, "Route not found.")
		}
		return
	}
	view, ok := match.Route.Handler().(*View)
	if !ok {
		d.unhandled(ctx, fmt.Errorf("dispatch: route %q has no view attached", match.Route.Pattern()))
		return
	}
	ctx.view = view
	ctx.Params = match.Params

	// Pre-route middleware. An early return here skips everything, including
	// the after hooks.
	ctx.state = StatePreRoute
	if err := safely(func() error { return d.Middleware.RunBeforeRoute(ctx) }); err != nil {
		d.except(ctx, err)
		return
	}
	if ctx.Returned() {
		return
	}

	// Resolving: open the request scope and pull in the view's declared
	// dependencies.
	ctx.state = StateResolving
	ctx.scope = d.Container.NewScope()
	if err := d.resolveUses(ctx, view); err != nil {
		d.except(ctx, err)
		return
	}

	// Pre-handler middleware, then the view's own before hook. Early returns
	// from here on still unwind the entered after hooks.
	ctx.state = StatePreHandler
	var entered int
	err = safely(func() error {
		var innerErr error
		entered, innerErr = d.Middleware.RunBeforeHandler(ctx)
		return innerErr
	})
	if err != nil {
		d.except(ctx, err)
		return
	}
	if !ctx.Returned() {
		if view.Before != nil {
			if err := safely(func() error { return view.Before(ctx) }); err != nil {
				d.except(ctx, err)
				return
			}
		}
	}

	if !ctx.Returned() {
		ctx.state = StateHandling
		if err := safely(func() error { return view.Handle(ctx) }); err != nil {
			d.except(ctx, err)
			return
		}
		if !ctx.Response.Written() {
			d.except(ctx, ErrNoResponse)
			return
		}

		ctx.state = StatePostHandler
		if view.After != nil {
			if err := safely(func() error { return view.After(ctx) }); err != nil {
				d.except(ctx, err)
				return
			}
		}
	}

	ctx.state = StatePostMiddleware
	if err := safely(func() error { return d.Middleware.RunAfterHandler(ctx, entered) }); err != nil {
		d.except(ctx, err)
	}
}

func (d *Dispatcher) resolveUses(ctx *Context, view *View) error {
	if len(view.Uses) == 0 {
		return nil
	}
	ctx.deps = make(map[string]any, len(view.Uses))
	for _, id := range view.Uses {
		instance, err := d.Container.Resolve(id, ctx.scope)
		if err != nil {
			return err
		}
		ctx.deps[id] = instance
	}
	return nil
}

// except gives the matched view's OnException hook a chance to recover.
// If it is absent, errors itself, or leaves the response empty, the error is
// unhandled.
func (d *Dispatcher) except(ctx *Context, err error) {
	ctx.state = StateExcepting

	// An oversized body is a request defect, not a server fault.
	if errors.Is(err, strhttp.ErrBodyTooLarge) {
		ctx.Response.Error(http.StatusRequestEntityTooLarge, "Payload too large.")
		return
	}

	if ctx.view == nil || ctx.view.OnException == nil {
		d.unhandled(ctx, err)
		return
	}
	hookErr := safely(func() error { return ctx.view.OnException(ctx, err) })
	if hookErr != nil {
		d.unhandled(ctx, hookErr)
		return
	}
	if !ctx.Response.Written() {
		d.unhandled(ctx, err)
	}
}

// unhandled is the host boundary: log, notify, answer 500.
func (d *Dispatcher) unhandled(ctx *Context, err error) {
	if d.OnUnhandled != nil {
		d.OnUnhandled(ctx, err)
	}

	event := d.Log.Error().
		Err(err).
		Str("method", ctx.Request.Method()).
		Str("path", ctx.Request.Path()).
		Stringer("state", ctx.state)
	var pe *PanicError
	if errors.As(err, &pe) {
		event = event.Bytes("stack", pe.Stack)
	}
	event.Msg("unhandled error")

	message := "Internal Server Error."
	if d.Debug {
		message = err.Error()
	}
	ctx.Response.Error(http.StatusInternalServerError, message)
}

func (d *Dispatcher) closeScope(ctx *Context) {
	if ctx.scope == nil {
		return
	}
	if err := ctx.scope.Close(); err != nil {
		d.Log.Error().Err(err).Msg("scope disposal failed")
	}
	ctx.scope = nil
}

// safely runs fn, converting a panic into a *PanicError.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
