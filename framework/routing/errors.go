package routing

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is the lookup outcome when no registered pattern matches the
// request path. It is a routing outcome, not a failure: the dispatcher turns
// it into a 404 response.
var ErrNotFound = errors.New("routing: no route matches the request path")

// PatternError reports an invalid route pattern at registration time.
type PatternError struct {
	Pattern string
	Reason  string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("routing: invalid pattern %q: %s", e.Pattern, e.Reason)
}

// MethodNotAllowedError is the lookup outcome when a pattern matches the
// path but the method is not registered for it. Allow carries the methods
// that would have matched, for the 405 Allow header.
type MethodNotAllowedError struct {
	Method string
	Allow  []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("routing: method %s not allowed (allow: %s)",
		e.Method, strings.Join(e.Allow, ", "))
}
