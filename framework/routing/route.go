package routing

import (
	"sort"
	"strings"
)

// Route is the immutable binding of one compiled pattern and a method set to
// a handler unit. Routes are created during view registration at startup and
// live for the process lifetime.
type Route struct {
	pattern  string
	segments []Segment
	methods  map[string]bool
	handler  any // the view (or other handler unit) this route dispatches to
	index    int // registration order, the final precedence tie-break
}

// NewRoute compiles pattern and binds it to the given methods and handler.
// At least one method is required; method names are normalized to upper case.
func NewRoute(pattern string, methods []string, handler any) (*Route, error) {
	if len(methods) == 0 {
		return nil, &PatternError{Pattern: pattern, Reason: "at least one HTTP method required"}
	}
	segments, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	ms := make(map[string]bool, len(methods))
	for _, m := range methods {
		ms[strings.ToUpper(m)] = true
	}
	return &Route{
		pattern:  pattern,
		segments: segments,
		methods:  ms,
		handler:  handler,
	}, nil
}

// Pattern returns the original pattern string.
func (r *Route) Pattern() string { return r.pattern }

// Handler returns the handler unit the route was registered with.
func (r *Route) Handler() any { return r.handler }

// Allows reports whether the route accepts the (upper-case) method.
func (r *Route) Allows(method string) bool { return r.methods[method] }

// Methods returns the allowed methods, sorted for deterministic output.
func (r *Route) Methods() []string {
	out := make([]string, 0, len(r.methods))
	for m := range r.methods {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Segments returns the compiled segment sequence. Callers must not mutate it.
func (r *Route) Segments() []Segment { return r.segments }
