// Package app is the bootstrap kernel: it assembles the container, provider
// registry, route matcher, and middleware chain into a running HTTP server
// with graceful shutdown and singleton disposal.
package app
