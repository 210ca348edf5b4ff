package container

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ── Lifetimes ────────────────────────────────────────────────────────────────

// Lifetime controls how long a resolved instance is reused.
type Lifetime int

const (
	// Transient builds a fresh instance on every resolution.
	Transient Lifetime = iota

	// Singleton builds once per container and caches the instance for the
	// process lifetime. First construction is serialized per identifier, so
	// concurrent requests can never build two instances.
	Singleton

	// Scoped builds once per Scope. Each request owns one Scope; a fresh
	// Scope gets a fresh instance.
	Scoped
)

func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Scoped:
		return "scoped"
	default:
		return "transient"
	}
}

// ── Registration ─────────────────────────────────────────────────────────────

// Factory builds a concrete value. Nested dependencies must be resolved
// through the supplied Resolver so the active Scope and the cycle-detection
// stack carry through the whole construction chain.
//
//	c.Register("users", func(r *container.Resolver) (any, error) {
//	    db, err := r.Resolve("db")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewUserStore(db.(*Database)), nil
//	}, container.Scoped, container.DependsOn("db"))
type Factory func(r *Resolver) (any, error)

// provider is a registration record: identifier, factory, lifetime.
type provider struct {
	id       string
	factory  Factory
	lifetime Lifetime
	uses     []string // declared dependency ids, consumed by Validate
}

// Option customizes a registration.
type Option func(*provider)

// DependsOn declares the identifiers a factory will resolve, so Validate can
// detect missing providers and cycles at startup instead of at first request.
// The declaration is advisory; resolution-time cycle detection still applies.
func DependsOn(ids ...string) Option {
	return func(p *provider) { p.uses = append(p.uses, ids...) }
}

// singleton is the per-identifier instance slot. The mutex serializes first
// construction; a failed construction is not cached, so a later resolution
// retries the factory.
type singleton struct {
	mu    sync.Mutex
	built bool
	value any
}

// ── Container ────────────────────────────────────────────────────────────────

// Container is the process-wide registry of dependency providers. It is
// created at startup, shared by every request, and torn down only when the
// process exits (Close disposes cached singletons).
//
// Registration is expected during the bootstrap phase; resolution is safe for
// concurrent use.
type Container struct {
	mu         sync.RWMutex
	providers  map[string]*provider
	singletons map[string]*singleton
	built      []string // singleton ids in construction order, disposed in reverse
	closed     bool
}

// New creates an empty container.
func New() *Container {
	return &Container{
		providers:  make(map[string]*provider),
		singletons: make(map[string]*singleton),
	}
}

// Register binds a factory under an identifier. Identifiers are unique within
// a container: registering an id twice replaces the previous provider (and
// abandons any cached singleton built from it), it never merges.
func (c *Container) Register(id string, factory Factory, lifetime Lifetime, opts ...Option) {
	p := &provider{id: id, factory: factory, lifetime: lifetime}
	for _, opt := range opts {
		opt(p)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers[id] = p
	c.dropBuilt(id)
	if lifetime == Singleton {
		c.singletons[id] = &singleton{}
	} else {
		delete(c.singletons, id)
	}
}

// Instance registers a pre-built value as an already-constructed singleton.
func (c *Container) Instance(id string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.providers[id] = &provider{id: id, lifetime: Singleton}
	c.singletons[id] = &singleton{built: true, value: value}
	c.dropBuilt(id)
	c.built = append(c.built, id)
}

// dropBuilt removes a stale construction-order entry so a replaced singleton
// is never disposed through the abandoned slot. Callers hold c.mu.
func (c *Container) dropBuilt(id string) {
	for i, built := range c.built {
		if built == id {
			c.built = append(c.built[:i], c.built[i+1:]...)
			return
		}
	}
}

// Has reports whether an identifier has a registered provider.
func (c *Container) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.providers[id]
	return ok
}

// IDs returns all registered identifiers (for diagnostics).
func (c *Container) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.providers))
	for id := range c.providers {
		out = append(out, id)
	}
	return out
}

// ── Resolution ───────────────────────────────────────────────────────────────

// Resolve builds or fetches the instance registered under id. Scoped
// providers require a non-nil scope; Singleton and Transient providers accept
// nil.
func (c *Container) Resolve(id string, scope *Scope) (any, error) {
	r := &Resolver{container: c, scope: scope}
	return r.Resolve(id)
}

// ResolveAs resolves id and type-asserts the result.
//
//	db, err := container.ResolveAs[*Database](c, "db", nil)
func ResolveAs[T any](c *Container, id string, scope *Scope) (T, error) {
	var zero T
	v, err := c.Resolve(id, scope)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: [%s] resolved to %T, want %T", id, v, zero)
	}
	return typed, nil
}

// ResolveFrom resolves id through an in-flight Resolver and type-asserts the
// result. Use it inside factories so cycle detection sees the full chain.
//
//	cfg, err := container.ResolveFrom[*config.Config](r, "config")
func ResolveFrom[T any](r *Resolver, id string) (T, error) {
	var zero T
	v, err := r.Resolve(id)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: [%s] resolved to %T, want %T", id, v, zero)
	}
	return typed, nil
}

// Resolver threads one resolution chain: it carries the container, the active
// scope, and the stack of identifiers currently under construction. Factories
// receive it to resolve their own dependencies.
type Resolver struct {
	container *Container
	scope     *Scope
	stack     []string
}

// Scope returns the scope this resolution runs under (nil outside a request).
func (r *Resolver) Scope() *Scope { return r.scope }

// Resolve builds or fetches the instance registered under id, recursively.
func (r *Resolver) Resolve(id string) (any, error) {
	c := r.container

	c.mu.RLock()
	closed := c.closed
	p, ok := c.providers[id]
	var slot *singleton
	if ok && p.lifetime == Singleton {
		slot = c.singletons[id]
	}
	c.mu.RUnlock()

	if closed {
		return nil, ErrClosed
	}
	if !ok {
		return nil, &UnresolvedError{ID: id}
	}
	for _, building := range r.stack {
		if building == id {
			chain := make([]string, 0, len(r.stack)+1)
			chain = append(chain, r.stack...)
			chain = append(chain, id)
			return nil, &CircularDependencyError{Chain: chain}
		}
	}

	switch p.lifetime {
	case Singleton:
		return r.resolveSingleton(p, slot)
	case Scoped:
		if r.scope == nil {
			return nil, &ScopeRequiredError{ID: id}
		}
		return r.scope.instance(id, func() (any, error) { return r.build(p) })
	default:
		return r.build(p)
	}
}

// ResolveAll resolves a list of identifiers into an id-keyed map.
func (r *Resolver) ResolveAll(ids []string) (map[string]any, error) {
	out := make(map[string]any, len(ids))
	for _, id := range ids {
		v, err := r.Resolve(id)
		if err != nil {
			return nil, err
		}
		out[id] = v
	}
	return out, nil
}

func (r *Resolver) resolveSingleton(p *provider, slot *singleton) (any, error) {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.built {
		return slot.value, nil
	}
	v, err := r.build(p)
	if err != nil {
		return nil, err
	}
	slot.value = v
	slot.built = true

	c := r.container
	c.mu.Lock()
	c.built = append(c.built, p.id)
	c.mu.Unlock()
	return v, nil
}

func (r *Resolver) build(p *provider) (any, error) {
	r.stack = append(r.stack, p.id)
	v, err := p.factory(r)
	r.stack = r.stack[:len(r.stack)-1]
	return v, err
}

// ── Startup validation ───────────────────────────────────────────────────────

// Validate walks the declared dependency graph (DependsOn) without invoking
// any factory and reports the first missing provider or declared cycle. Call
// it after all providers are registered; it turns first-request DI failures
// into startup failures.
func (c *Container) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	const (
		white = 0 // unvisited
		grey  = 1 // on the current path
		black = 2 // fully checked
	)
	state := make(map[string]int, len(c.providers))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		p, ok := c.providers[id]
		if !ok {
			return &UnresolvedError{ID: id}
		}
		switch state[id] {
		case black:
			return nil
		case grey:
			chain := append(append([]string{}, path...), id)
			return &CircularDependencyError{Chain: chain}
		}
		state[id] = grey
		for _, dep := range p.uses {
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}
		state[id] = black
		return nil
	}

	for id := range c.providers {
		if err := visit(id, nil); err != nil {
			return err
		}
	}
	return nil
}

// ── Teardown ─────────────────────────────────────────────────────────────────

// Close disposes every cached singleton that implements io.Closer, in reverse
// construction order, exactly once. The container rejects resolutions after
// Close. Intended for process shutdown.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	built := c.built
	c.built = nil
	slots := c.singletons
	c.mu.Unlock()

	var errs []error
	for i := len(built) - 1; i >= 0; i-- {
		slot := slots[built[i]]
		if slot == nil || !slot.built {
			continue
		}
		if closer, ok := slot.value.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
