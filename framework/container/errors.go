package container

import (
	"errors"
	"fmt"
	"strings"
)

// ErrClosed is returned by resolutions attempted after Container.Close.
var ErrClosed = errors.New("container: closed")

// ErrScopeClosed is returned when a scoped instance is requested from a scope
// that has already been torn down.
var ErrScopeClosed = errors.New("container: scope closed")

// UnresolvedError reports a resolution (or validation) of an identifier that
// has no registered provider.
type UnresolvedError struct {
	ID string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("container: no provider registered for [%s]", e.ID)
}

// CircularDependencyError reports a dependency cycle. Chain holds the
// identifiers in resolution order; the last element repeats the first
// offender, e.g. [a b a].
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("container: circular dependency: %s", strings.Join(e.Chain, " -> "))
}

// ScopeRequiredError reports a Scoped identifier resolved without an active
// scope, which happens when request-bound services are requested outside a
// request.
type ScopeRequiredError struct {
	ID string
}

func (e *ScopeRequiredError) Error() string {
	return fmt.Sprintf("container: [%s] is scoped and requires an active scope", e.ID)
}
