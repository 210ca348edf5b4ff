package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strut-web/strut/framework/routing"
)

func mustRoute(t *testing.T, pattern string, methods []string, handler any) *routing.Route {
	t.Helper()
	rt, err := routing.NewRoute(pattern, methods, handler)
	require.NoError(t, err)
	return rt
}

func newMatcher(t *testing.T, patterns ...string) *routing.Matcher {
	t.Helper()
	m := routing.NewMatcher()
	for _, p := range patterns {
		m.Add(mustRoute(t, p, []string{"GET"}, p))
	}
	return m
}

func TestMatcher_ExactLiteralMatch(t *testing.T) {
	m := newMatcher(t, "/users", "/posts", "/users/all")

	match, err := m.Lookup("GET", "/users")
	require.NoError(t, err)
	assert.Equal(t, "/users", match.Route.Pattern())
	assert.Empty(t, match.Params)
}

func TestMatcher_RootRoute(t *testing.T) {
	m := newMatcher(t, "/")
	match, err := m.Lookup("GET", "/")
	require.NoError(t, err)
	assert.Equal(t, "/", match.Route.Pattern())
}

func TestMatcher_CapturesTypedParams(t *testing.T) {
	m := newMatcher(t, "/users/<id:int>/posts/<slug:slug>")

	match, err := m.Lookup("GET", "/users/42/posts/hello-world")
	require.NoError(t, err)
	assert.Equal(t, 42, match.Params.Int("id"))
	assert.Equal(t, "hello-world", match.Params.String("slug"))
}

func TestMatcher_IntFilterOutranksStr(t *testing.T) {
	// Registration order deliberately puts the broader pattern first.
	m := newMatcher(t, "/users/<name:str>", "/users/<id:int>")

	match, err := m.Lookup("GET", "/users/42")
	require.NoError(t, err)
	assert.Equal(t, "/users/<id:int>", match.Route.Pattern())

	match, err = m.Lookup("GET", "/users/abc")
	require.NoError(t, err)
	assert.Equal(t, "/users/<name:str>", match.Route.Pattern())
	assert.Equal(t, "abc", match.Params.String("name"))
}

func TestMatcher_StaticOutranksDynamic(t *testing.T) {
	m := newMatcher(t, "/users/<id:int>", "/users/me")

	match, err := m.Lookup("GET", "/users/me")
	require.NoError(t, err)
	assert.Equal(t, "/users/me", match.Route.Pattern())
}

func TestMatcher_EqualSpecificity_FirstRegisteredWins(t *testing.T) {
	m := routing.NewMatcher()
	m.Add(mustRoute(t, "/x/<a:int>", []string{"GET"}, "first"))
	m.Add(mustRoute(t, "/x/<b:int>", []string{"GET"}, "second"))

	match, err := m.Lookup("GET", "/x/7")
	require.NoError(t, err)
	assert.Equal(t, "first", match.Route.Handler())
}

func TestMatcher_SegmentCountExact(t *testing.T) {
	m := newMatcher(t, "/users/<id:int>")

	_, err := m.Lookup("GET", "/users/42/extra")
	assert.ErrorIs(t, err, routing.ErrNotFound)
	_, err = m.Lookup("GET", "/users")
	assert.ErrorIs(t, err, routing.ErrNotFound)
}

func TestMatcher_TrailingSlashInsignificant(t *testing.T) {
	m := newMatcher(t, "/users/<id:int>")
	match, err := m.Lookup("GET", "/users/42/")
	require.NoError(t, err)
	assert.Equal(t, 42, match.Params.Int("id"))
}

func TestMatcher_CatchAllCapturesSuffix(t *testing.T) {
	m := newMatcher(t, "/files/*path")

	match, err := m.Lookup("GET", "/files/css/site/main.css")
	require.NoError(t, err)
	assert.Equal(t, "css/site/main.css", match.Params.String("path"))

	// The catch-all needs at least one remaining segment.
	_, err = m.Lookup("GET", "/files")
	assert.ErrorIs(t, err, routing.ErrNotFound)
}

func TestMatcher_CatchAllRanksLast(t *testing.T) {
	m := newMatcher(t, "/files/*path", "/files/latest")

	match, err := m.Lookup("GET", "/files/latest")
	require.NoError(t, err)
	assert.Equal(t, "/files/latest", match.Route.Pattern())
}

func TestMatcher_MethodNotAllowed_DistinctFromNotFound(t *testing.T) {
	m := routing.NewMatcher()
	m.Add(mustRoute(t, "/users/<id:int>", []string{"GET"}, "show"))
	m.Add(mustRoute(t, "/users/<id:int>", []string{"DELETE"}, "destroy"))

	_, err := m.Lookup("POST", "/users/42")
	var mna *routing.MethodNotAllowedError
	require.ErrorAs(t, err, &mna)
	assert.Equal(t, "POST", mna.Method)
	assert.Equal(t, []string{"DELETE", "GET"}, mna.Allow)

	_, err = m.Lookup("POST", "/nothing/here")
	assert.ErrorIs(t, err, routing.ErrNotFound)
}

func TestMatcher_HeadFallsBackToGet(t *testing.T) {
	m := newMatcher(t, "/users")

	match, err := m.Lookup("HEAD", "/users")
	require.NoError(t, err)
	assert.Equal(t, "/users", match.Route.Pattern())
}

func TestMatcher_UUIDFilter(t *testing.T) {
	m := newMatcher(t, "/items/<key:uuid>")

	match, err := m.Lookup("GET", "/items/6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", match.Params.String("key"))

	_, err = m.Lookup("GET", "/items/not-a-uuid")
	assert.ErrorIs(t, err, routing.ErrNotFound)
}

func TestMatcher_SlugFilter(t *testing.T) {
	m := newMatcher(t, "/posts/<slug:slug>")

	_, err := m.Lookup("GET", "/posts/hello-world-42")
	require.NoError(t, err)

	_, err = m.Lookup("GET", "/posts/Hello_World")
	assert.ErrorIs(t, err, routing.ErrNotFound)
}

func TestMatcher_IntConversionFailure_IsNonMatch(t *testing.T) {
	m := newMatcher(t, "/users/<id:int>")

	for _, path := range []string{"/users/-1", "/users/+1", "/users/1.5", "/users/99999999999999999999999999"} {
		_, err := m.Lookup("GET", path)
		assert.ErrorIs(t, err, routing.ErrNotFound, path)
	}
}

func TestMatcher_NonOverlappingRoutes_OrderIndependent(t *testing.T) {
	patterns := []string{"/a", "/b/<x:int>", "/c/<y>", "/d/e/f"}
	forward := newMatcher(t, patterns...)
	backward := newMatcher(t, patterns[3], patterns[2], patterns[1], patterns[0])

	for _, path := range []string{"/a", "/b/9", "/c/zzz", "/d/e/f"} {
		mf, err := forward.Lookup("GET", path)
		require.NoError(t, err)
		mb, err := backward.Lookup("GET", path)
		require.NoError(t, err)
		assert.Equal(t, mf.Route.Pattern(), mb.Route.Pattern(), path)
	}
}
