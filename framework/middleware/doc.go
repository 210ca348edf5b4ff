// Package middleware ships the stock cross-cutting hooks: request ids,
// access logging, and request metrics.
package middleware
