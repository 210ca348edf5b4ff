package dispatch

// Middleware hooks run around routing and handling. BeforeRoute runs before
// the view's dependencies are resolved, BeforeHandler just before the
// handler, AfterHandler on the way back out in reverse registration order.
// Hooks must not keep per-request state on the middleware value itself;
// concurrent requests share one instance.
type Middleware interface {
	BeforeRoute(ctx *Context) error
	BeforeHandler(ctx *Context) error
	AfterHandler(ctx *Context) error
}

// NopMiddleware is an embeddable no-op implementation, so concrete middleware
// only override the hooks they need.
type NopMiddleware struct{}

func (NopMiddleware) BeforeRoute(*Context) error   { return nil }
func (NopMiddleware) BeforeHandler(*Context) error { return nil }
func (NopMiddleware) AfterHandler(*Context) error  { return nil }

// Chain holds middleware in registration order.
type Chain struct {
	stack []Middleware
}

// NewChain creates an empty middleware chain.
func NewChain(mws ...Middleware) *Chain {
	return &Chain{stack: mws}
}

// Use appends middleware to the chain.
func (c *Chain) Use(mws ...Middleware) *Chain {
	c.stack = append(c.stack, mws...)
	return c
}

// Len returns the number of registered middleware.
func (c *Chain) Len() int { return len(c.stack) }

// RunBeforeRoute runs BeforeRoute hooks in order, stopping at the first
// error or early return.
func (c *Chain) RunBeforeRoute(ctx *Context) error {
	for _, mw := range c.stack {
		if err := mw.BeforeRoute(ctx); err != nil {
			return err
		}
		if ctx.Returned() {
			return nil
		}
	}
	return nil
}

// RunBeforeHandler runs BeforeHandler hooks in order. It returns how many
// hooks were entered so the unwind can run exactly those AfterHandler hooks,
// whether it stopped on an early return, an error, or ran the full chain.
func (c *Chain) RunBeforeHandler(ctx *Context) (entered int, err error) {
	for _, mw := range c.stack {
		entered++
		if err := mw.BeforeHandler(ctx); err != nil {
			return entered, err
		}
		if ctx.Returned() {
			return entered, nil
		}
	}
	return entered, nil
}

// RunAfterHandler unwinds the first entered hooks in reverse registration
// order.
func (c *Chain) RunAfterHandler(ctx *Context, entered int) error {
	if entered > len(c.stack) {
		entered = len(c.stack)
	}
	for i := entered - 1; i >= 0; i-- {
		if err := c.stack[i].AfterHandler(ctx); err != nil {
			return err
		}
	}
	return nil
}
