// Package container provides the dependency-injection core of strut: a
// process-wide provider registry with lifetime-aware resolution and
// request-bounded scopes.
//
// # Lifetimes
//
// Every provider is registered under a string identifier with one of three
// lifetimes:
//
//   - Transient: the factory runs on every resolution.
//   - Singleton: the factory runs once per container; the instance is cached
//     for the process lifetime. First construction is serialized per
//     identifier, so a race between two requests builds exactly one instance.
//   - Scoped: the factory runs once per Scope. The dispatcher opens one Scope
//     per request and closes it when the response goes out, so scoped
//     instances live exactly as long as the request that resolved them.
//
// # Nested dependencies and cycles
//
// Factories receive a *Resolver and resolve their own dependencies through
// it. The Resolver carries the construction stack, so a cycle (a needs b,
// b needs a) fails fast with a *CircularDependencyError naming the chain
// instead of recursing until the stack blows. Registrations can also declare
// their dependencies up front with DependsOn, which lets Validate reject
// missing providers and cycles at startup, before any request is served.
//
// # Disposal
//
// Instances that implement io.Closer are disposed exactly once: scoped
// instances when their Scope closes (reverse creation order), singletons when
// the Container closes at process shutdown.
//
// # Service providers
//
// ServiceProvider and ProviderRegistry give applications a two-phase
// bootstrap: every provider's Register phase runs before any Boot phase, so
// Boot can safely resolve bindings contributed by other providers.
package container
