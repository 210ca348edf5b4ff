package container_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strut-web/strut/framework/container"
)

type service struct {
	name string
}

func TestContainer_Transient_FreshInstanceEveryResolve(t *testing.T) {
	c := container.New()
	c.Register("svc", func(*container.Resolver) (any, error) {
		return &service{name: "transient"}, nil
	}, container.Transient)

	a, err := c.Resolve("svc", nil)
	require.NoError(t, err)
	b, err := c.Resolve("svc", nil)
	require.NoError(t, err)

	assert.NotSame(t, a, b, "transient resolutions must build distinct instances")
}

func TestContainer_Singleton_SameInstanceEveryResolve(t *testing.T) {
	c := container.New()
	calls := 0
	c.Register("svc", func(*container.Resolver) (any, error) {
		calls++
		return &service{name: "singleton"}, nil
	}, container.Singleton)

	a, err := c.Resolve("svc", nil)
	require.NoError(t, err)
	b, err := c.Resolve("svc", nil)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
}

func TestContainer_Singleton_ConcurrentFirstResolveBuildsOnce(t *testing.T) {
	c := container.New()
	var calls int
	var mu sync.Mutex
	c.Register("svc", func(*container.Resolver) (any, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return &service{name: "singleton"}, nil
	}, container.Singleton)

	const workers = 100
	results := make([]any, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Resolve("svc", nil)
		}()
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
	}

	assert.Equal(t, 1, calls, "factory must run at most once per identifier")
	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestContainer_Scoped_CachedPerScope(t *testing.T) {
	c := container.New()
	c.Register("svc", func(*container.Resolver) (any, error) {
		return &service{name: "scoped"}, nil
	}, container.Scoped)

	s1 := c.NewScope()
	s2 := c.NewScope()

	a, err := c.Resolve("svc", s1)
	require.NoError(t, err)
	b, err := c.Resolve("svc", s1)
	require.NoError(t, err)
	other, err := c.Resolve("svc", s2)
	require.NoError(t, err)

	assert.Same(t, a, b, "same scope must reuse the instance")
	assert.NotSame(t, a, other, "a fresh scope must get its own instance")
}

func TestContainer_Scoped_WithoutScopeFails(t *testing.T) {
	c := container.New()
	c.Register("svc", func(*container.Resolver) (any, error) {
		return &service{}, nil
	}, container.Scoped)

	_, err := c.Resolve("svc", nil)
	var scopeErr *container.ScopeRequiredError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, "svc", scopeErr.ID)
}

func TestContainer_Unregistered_Fails(t *testing.T) {
	c := container.New()

	_, err := c.Resolve("missing", nil)
	var unresolved *container.UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "missing", unresolved.ID)
}

func TestContainer_NestedResolution(t *testing.T) {
	c := container.New()
	c.Register("inner", func(*container.Resolver) (any, error) {
		return &service{name: "inner"}, nil
	}, container.Singleton)
	c.Register("outer", func(r *container.Resolver) (any, error) {
		inner, err := r.Resolve("inner")
		if err != nil {
			return nil, err
		}
		return &service{name: "outer+" + inner.(*service).name}, nil
	}, container.Transient)

	v, err := c.Resolve("outer", nil)
	require.NoError(t, err)
	assert.Equal(t, "outer+inner", v.(*service).name)
}

func TestContainer_CircularDependency_FailsFast(t *testing.T) {
	c := container.New()
	c.Register("a", func(r *container.Resolver) (any, error) {
		return r.Resolve("b")
	}, container.Transient)
	c.Register("b", func(r *container.Resolver) (any, error) {
		return r.Resolve("a")
	}, container.Transient)

	_, err := c.Resolve("a", nil)
	var cycle *container.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Chain)
}

func TestContainer_SelfDependency_FailsFast(t *testing.T) {
	c := container.New()
	c.Register("a", func(r *container.Resolver) (any, error) {
		return r.Resolve("a")
	}, container.Singleton)

	_, err := c.Resolve("a", nil)
	var cycle *container.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
}

func TestContainer_Reregistration_Replaces(t *testing.T) {
	c := container.New()
	c.Register("svc", func(*container.Resolver) (any, error) {
		return "first", nil
	}, container.Singleton)

	v, err := c.Resolve("svc", nil)
	require.NoError(t, err)
	assert.Equal(t, "first", v)

	c.Register("svc", func(*container.Resolver) (any, error) {
		return "second", nil
	}, container.Singleton)

	v, err = c.Resolve("svc", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", v, "re-registration must replace, never merge")
}

func TestContainer_FailedSingletonConstruction_Retries(t *testing.T) {
	c := container.New()
	attempts := 0
	c.Register("svc", func(*container.Resolver) (any, error) {
		attempts++
		if attempts == 1 {
			return nil, assert.AnError
		}
		return "ok", nil
	}, container.Singleton)

	_, err := c.Resolve("svc", nil)
	require.Error(t, err)

	v, err := c.Resolve("svc", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, attempts)
}

func TestContainer_Instance_ResolvesPrebuiltValue(t *testing.T) {
	c := container.New()
	svc := &service{name: "prebuilt"}
	c.Instance("svc", svc)

	v, err := c.Resolve("svc", nil)
	require.NoError(t, err)
	assert.Same(t, svc, v)
}

func TestContainer_ResolveAs_TypeChecks(t *testing.T) {
	c := container.New()
	c.Instance("svc", &service{name: "typed"})

	svc, err := container.ResolveAs[*service](c, "svc", nil)
	require.NoError(t, err)
	assert.Equal(t, "typed", svc.name)

	_, err = container.ResolveAs[string](c, "svc", nil)
	require.Error(t, err)
}

func TestContainer_Validate_ReportsMissingDependency(t *testing.T) {
	c := container.New()
	c.Register("svc", func(*container.Resolver) (any, error) {
		return nil, nil
	}, container.Singleton, container.DependsOn("missing"))

	err := c.Validate()
	var unresolved *container.UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "missing", unresolved.ID)
}

func TestContainer_Validate_ReportsDeclaredCycle(t *testing.T) {
	c := container.New()
	c.Register("a", func(*container.Resolver) (any, error) { return nil, nil },
		container.Singleton, container.DependsOn("b"))
	c.Register("b", func(*container.Resolver) (any, error) { return nil, nil },
		container.Singleton, container.DependsOn("a"))

	err := c.Validate()
	var cycle *container.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
}

func TestContainer_Validate_AcceptsAcyclicGraph(t *testing.T) {
	c := container.New()
	c.Register("config", func(*container.Resolver) (any, error) { return nil, nil },
		container.Singleton)
	c.Register("db", func(*container.Resolver) (any, error) { return nil, nil },
		container.Singleton, container.DependsOn("config"))
	c.Register("store", func(*container.Resolver) (any, error) { return nil, nil },
		container.Scoped, container.DependsOn("db", "config"))

	require.NoError(t, c.Validate())
}

type closable struct {
	name   string
	closed *[]string
}

func (c *closable) Close() error {
	*c.closed = append(*c.closed, c.name)
	return nil
}

func TestContainer_Close_DisposesSingletonsInReverseOrder(t *testing.T) {
	c := container.New()
	var closed []string
	c.Register("first", func(*container.Resolver) (any, error) {
		return &closable{name: "first", closed: &closed}, nil
	}, container.Singleton)
	c.Register("second", func(*container.Resolver) (any, error) {
		return &closable{name: "second", closed: &closed}, nil
	}, container.Singleton)

	_, err := c.Resolve("first", nil)
	require.NoError(t, err)
	_, err = c.Resolve("second", nil)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.Equal(t, []string{"second", "first"}, closed)

	// Idempotent: a second Close must not dispose again.
	require.NoError(t, c.Close())
	assert.Len(t, closed, 2)
}

func TestContainer_Close_ReregisteredSingletonDisposedOnce(t *testing.T) {
	c := container.New()
	var closed []string
	c.Register("svc", func(*container.Resolver) (any, error) {
		return &closable{name: "old", closed: &closed}, nil
	}, container.Singleton)
	_, err := c.Resolve("svc", nil)
	require.NoError(t, err)

	c.Register("svc", func(*container.Resolver) (any, error) {
		return &closable{name: "new", closed: &closed}, nil
	}, container.Singleton)
	_, err = c.Resolve("svc", nil)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.Equal(t, []string{"new"}, closed, "only the live instance is disposed, exactly once")
}

func TestContainer_Close_RejectsFurtherResolutions(t *testing.T) {
	c := container.New()
	c.Register("svc", func(*container.Resolver) (any, error) { return "v", nil },
		container.Transient)

	require.NoError(t, c.Close())

	_, err := c.Resolve("svc", nil)
	assert.ErrorIs(t, err, container.ErrClosed)
}

func TestContainer_Has(t *testing.T) {
	c := container.New()
	assert.False(t, c.Has("svc"))
	c.Register("svc", func(*container.Resolver) (any, error) { return nil, nil },
		container.Transient)
	assert.True(t, c.Has("svc"))
}
