package routing

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ── Captured parameters ──────────────────────────────────────────────────────

// Params holds captured path parameters, already converted per their filter:
// int segments carry int values, everything else carries strings.
type Params map[string]any

// Has reports whether a parameter was captured.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// String returns the parameter as a string ("" when absent or not a string).
func (p Params) String(name string) string {
	s, _ := p[name].(string)
	return s
}

// Int returns the parameter as an int (0 when absent or not an int).
func (p Params) Int(name string) int {
	n, _ := p[name].(int)
	return n
}

// Match is the outcome of a successful lookup: the winning route and its
// captured parameters. It lives for one request.
type Match struct {
	Route  *Route
	Params Params
}

// ── Matcher ──────────────────────────────────────────────────────────────────

// Matcher matches request paths against registered routes.
//
// Precedence when several patterns could match the same path: a static
// segment outranks a dynamic one at the same position; among dynamic
// segments a narrowing filter (int, uuid, slug) outranks the catch-anything
// str; a catch-all ranks below everything. Remaining ties go to the
// earlier-registered route. The order is fixed by a stable sort at
// registration, so matching is deterministic and ambiguous registrations
// never flip winners between runs.
//
// Routes are registered during the single-threaded bootstrap phase; after
// that the matcher is read-only and safe for concurrent lookups.
type Matcher struct {
	routes []*Route
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher { return &Matcher{} }

// Add registers a route and re-establishes precedence order.
func (m *Matcher) Add(route *Route) {
	route.index = len(m.routes)
	m.routes = append(m.routes, route)
	sort.SliceStable(m.routes, func(i, j int) bool {
		return moreSpecific(m.routes[i], m.routes[j])
	})
}

// Routes returns all registered routes in precedence order.
func (m *Matcher) Routes() []*Route { return m.routes }

// Lookup matches method+path against the registered routes.
//
// Outcomes:
//   - (*Match, nil) on success;
//   - (nil, *MethodNotAllowedError) when a pattern matches the path but not
//     the method; the error carries the allowed method set;
//   - (nil, ErrNotFound) when no pattern matches at all.
//
// HEAD requests fall back to GET routes when no HEAD route matches.
func (m *Matcher) Lookup(method, path string) (*Match, error) {
	method = strings.ToUpper(method)
	methods := []string{method}
	if method == http.MethodHead {
		methods = append(methods, http.MethodGet)
	}

	for _, meth := range methods {
		for _, rt := range m.routes {
			if !rt.Allows(meth) {
				continue
			}
			if params, ok := matchSegments(rt.segments, path); ok {
				return &Match{Route: rt, Params: params}, nil
			}
		}
	}

	// No route for this method: distinguish 405 from 404 by re-matching the
	// path against every registered pattern regardless of method.
	allow := make(map[string]bool)
	for _, rt := range m.routes {
		if _, ok := matchSegments(rt.segments, path); ok {
			for _, meth := range rt.Methods() {
				allow[meth] = true
			}
		}
	}
	if len(allow) > 0 {
		allowed := make([]string, 0, len(allow))
		for meth := range allow {
			allowed = append(allowed, meth)
		}
		sort.Strings(allowed)
		return nil, &MethodNotAllowedError{Method: method, Allow: allowed}
	}
	return nil, ErrNotFound
}

// ── Precedence ───────────────────────────────────────────────────────────────

func segmentRank(s Segment) int {
	switch s.Kind {
	case SegmentStatic:
		return 3
	case SegmentParam:
		if s.Filter == FilterStr {
			return 1
		}
		return 2 // int, uuid, slug narrow the match
	default:
		return 0 // catch-all
	}
}

// moreSpecific orders routes position by position: higher segment rank first.
// Equal routes keep registration order through the stable sort.
func moreSpecific(a, b *Route) bool {
	n := min(len(a.segments), len(b.segments))
	for i := 0; i < n; i++ {
		ra, rb := segmentRank(a.segments[i]), segmentRank(b.segments[i])
		if ra != rb {
			return ra > rb
		}
	}
	return len(a.segments) > len(b.segments)
}

// ── Matching ─────────────────────────────────────────────────────────────────

// matchSegments matches a path against a compiled segment sequence. Matching
// is segment-count exact unless the sequence ends in a catch-all, which
// greedily captures the (non-empty) remaining suffix as one value. A value
// that fails its filter's conversion makes the route a non-match, never an
// error.
func matchSegments(segments []Segment, path string) (Params, bool) {
	parts := splitPath(path)

	params := make(Params, len(segments))
	for i, seg := range segments {
		if seg.Kind == SegmentCatchAll {
			rest := parts[i:]
			if len(rest) == 0 {
				return nil, false
			}
			params[seg.Name] = strings.Join(rest, "/")
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		switch seg.Kind {
		case SegmentStatic:
			if parts[i] != seg.Literal {
				return nil, false
			}
		case SegmentParam:
			v, ok := convertParam(seg.Filter, parts[i])
			if !ok {
				return nil, false
			}
			params[seg.Name] = v
		}
	}
	if len(parts) != len(segments) {
		return nil, false
	}
	return params, true
}

// splitPath splits a request path into segments. Leading and trailing
// slashes are insignificant: "/users/" matches "/users".
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// convertParam validates raw against the filter and returns the typed value.
func convertParam(f Filter, raw string) (any, bool) {
	if raw == "" {
		return nil, false
	}
	switch f {
	case FilterInt:
		for _, r := range raw {
			if r < '0' || r > '9' {
				return nil, false
			}
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, false // overflow
		}
		return n, true
	case FilterUUID:
		if len(raw) != 36 {
			return nil, false
		}
		if _, err := uuid.Parse(raw); err != nil {
			return nil, false
		}
		return raw, true
	case FilterSlug:
		for _, r := range raw {
			if r != '-' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
				return nil, false
			}
		}
		return raw, true
	default:
		return raw, true
	}
}
