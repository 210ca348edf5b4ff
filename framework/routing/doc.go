// Package routing compiles route patterns and matches request paths against
// them.
//
// # Pattern syntax
//
//	/users                     static segments
//	/users/<id>                dynamic segment, default str filter
//	/users/<id:int>            typed dynamic segment
//	/posts/<slug:slug>         slug filter: [a-z0-9-]+
//	/items/<key:uuid>          canonical RFC 4122 form
//	/files/*path               trailing catch-all (rest of the path, one value)
//
// Patterns compile once at registration into a fixed segment sequence;
// nothing is re-parsed per request. Captured values are converted per filter
// before handlers see them: <n:int> yields an int, everything else a string.
// A value that fails its filter makes the route a non-match and the lookup
// moves on to the next candidate.
//
// # Precedence
//
// When several patterns could match one path, the matcher prefers, position
// by position: static segments, then narrowing filters (int, uuid, slug),
// then str, then catch-alls. Ties fall back to registration order, first
// registered wins. The ordering is established by a stable sort at
// registration, so it is deterministic across runs.
//
// Lookup distinguishes "no pattern matched" (ErrNotFound) from "pattern
// matched, method didn't" (*MethodNotAllowedError with the allowed set), so
// the dispatcher can answer 404 and 405 correctly.
package routing
