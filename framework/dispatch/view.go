package dispatch

// RouteDef binds one URL pattern to the HTTP methods a view serves it with.
type RouteDef struct {
	Pattern string
	Methods []string
}

// HookFunc is a lifecycle hook around the handler.
type HookFunc func(ctx *Context) error

// HandlerFunc produces the response for a matched request.
type HandlerFunc func(ctx *Context) error

// ErrorHook handles an error raised anywhere in the view's lifecycle. It may
// build a response on the context; returning an error (or leaving the
// response empty) escalates to the unhandled-error boundary.
type ErrorHook func(ctx *Context, err error) error

// View is a handler unit: one or more routes plus lifecycle hooks. Handle is
// the only required hook. Uses names container bindings resolved into the
// context before the handler runs.
//
//	users := &dispatch.View{
//		Name:   "users.show",
//		Routes: []dispatch.RouteDef{{Pattern: "/users/<id:int>", Methods: []string{"GET"}}},
//		Uses:   []string{"user.repository"},
//		Handle: showUser,
//	}
type View struct {
	Name   string
	Routes []RouteDef
	Uses   []string

	Before      HookFunc
	Handle      HandlerFunc
	After       HookFunc
	OnException ErrorHook
}
