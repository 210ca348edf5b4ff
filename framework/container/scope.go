package container

import (
	"errors"
	"io"
	"sync"
)

// Scope is a request-bounded cache of Scoped instances. The dispatcher opens
// one Scope per request before dependency resolution and closes it when the
// response is finalized, on every path including errors. A Scope is owned
// by exactly one request; it must never be shared across requests.
type Scope struct {
	container *Container

	mu        sync.Mutex
	instances map[string]any
	order     []string // creation order, disposed in reverse
	closed    bool
}

// NewScope opens a scope backed by this container.
func (c *Container) NewScope() *Scope {
	return &Scope{
		container: c,
		instances: make(map[string]any),
	}
}

// Resolve resolves id through the owning container with this scope active.
func (s *Scope) Resolve(id string) (any, error) {
	return s.container.Resolve(id, s)
}

// Container returns the container this scope belongs to.
func (s *Scope) Container() *Container { return s.container }

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// instance returns the cached value for id, building it on first use. The
// lock is released around build so a scoped factory can resolve further
// scoped dependencies; the double-check after build keeps the cache
// single-instance if that recursion already populated the slot.
func (s *Scope) instance(id string, build func() (any, error)) (any, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrScopeClosed
	}
	if v, ok := s.instances[id]; ok {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	v, err := build()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrScopeClosed
	}
	if existing, ok := s.instances[id]; ok {
		return existing, nil
	}
	s.instances[id] = v
	s.order = append(s.order, id)
	return v, nil
}

// Close disposes every cached instance that implements io.Closer, in reverse
// creation order. Close is idempotent: disposal runs exactly once no matter
// how many times it is called or which dispatch path led here.
func (s *Scope) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	instances := s.instances
	order := s.order
	s.instances = nil
	s.order = nil
	s.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		if closer, ok := instances[order[i]].(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
