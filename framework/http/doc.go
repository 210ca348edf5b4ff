// Package http wraps the host server's request and response types for the
// kernel. Request exposes what routing and handlers need (method, path,
// headers, bounded body access, binding); Response buffers the reply and
// keeps it mutable through the whole lifecycle until Finalize writes it out.
package http
