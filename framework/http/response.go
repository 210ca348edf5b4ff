package http

import (
	"encoding/json"
	"net/http"

	"github.com/strut-web/strut/framework/validation"
)

type envelope map[string]any

// Response is the in-progress reply. Unlike a raw ResponseWriter it buffers
// status, headers, and body, staying mutable through the whole request
// lifecycle: a before hook can set headers, the handler can replace the
// body, an after hook can rewrite the status. Nothing reaches the wire
// until Finalize.
type Response struct {
	status int
	header http.Header
	body   []byte
	sent   bool
}

// NewResponse creates an empty in-progress response.
func NewResponse() *Response {
	return &Response{header: make(http.Header)}
}

// Status returns the current status code (0 until one is set).
func (res *Response) Status() int { return res.status }

// SetStatus sets the status code.
func (res *Response) SetStatus(code int) *Response {
	res.status = code
	return res
}

// Header returns the mutable header map.
func (res *Response) Header() http.Header { return res.header }

// SetHeader sets a header value.
func (res *Response) SetHeader(key, value string) *Response {
	res.header.Set(key, value)
	return res
}

// Body returns the current body bytes.
func (res *Response) Body() []byte { return res.body }

// SetBody replaces the body bytes.
func (res *Response) SetBody(b []byte) *Response {
	res.body = b
	return res
}

// Written reports whether anything has been produced yet. The dispatcher
// uses it to detect handlers that returned without building a response.
func (res *Response) Written() bool {
	return res.status != 0 || len(res.body) > 0
}

// Sent reports whether Finalize has run.
func (res *Response) Sent() bool { return res.sent }

// ── JSON responses ───────────────────────────────────────────────────────────

// JSON sets a JSON body with the given status, replacing any previous body.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	res.status = status
	res.header.Set("Content-Type", "application/json; charset=utf-8")
	res.body = b
	return nil
}

// Text sets a plain-text body with the given status.
func (res *Response) Text(status int, body string) {
	res.status = status
	res.header.Set("Content-Type", "text/plain; charset=utf-8")
	res.body = []byte(body)
}

// Success sets 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	_ = res.JSON(http.StatusOK, envelope{"data": v})
}

// Created sets 201 JSON: {"data": v}
func (res *Response) Created(v any) {
	_ = res.JSON(http.StatusCreated, envelope{"data": v})
}

// NoContent sets 204 with no body.
func (res *Response) NoContent() {
	res.status = http.StatusNoContent
	res.body = nil
}

// Error sets a JSON error response.
//
//	res.Error(http.StatusNotFound, "Resource not found")
func (res *Response) Error(status int, message string) {
	_ = res.JSON(status, envelope{"message": message})
}

// Unauthorized sets 401.
func (res *Response) Unauthorized(message ...string) {
	res.Error(http.StatusUnauthorized, first(message, "Unauthenticated."))
}

// Forbidden sets 403.
func (res *Response) Forbidden(message ...string) {
	res.Error(http.StatusForbidden, first(message, "This action is unauthorized."))
}

// NotFound sets 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// ServerError sets 500.
func (res *Response) ServerError(message ...string) {
	res.Error(http.StatusInternalServerError, first(message, "Server Error."))
}

// ValidationError sets 422 with the standard error bag:
// {"errors": {"field": ["msg"]}}
func (res *Response) ValidationError(errs *validation.Errors) {
	_ = res.JSON(http.StatusUnprocessableEntity, errs)
}

// Redirect sets a redirect response.
//
//	res.Redirect(http.StatusFound, "/dashboard")
func (res *Response) Redirect(status int, url string) {
	res.status = status
	res.header.Set("Location", url)
	res.body = nil
}

// ── Finalization ─────────────────────────────────────────────────────────────

// Finalize writes the buffered response to w, once. An unset status defaults
// to 200. When head is true (HEAD requests) the body is suppressed, matching
// the headers a GET would have produced.
func (res *Response) Finalize(w http.ResponseWriter, head bool) error {
	if res.sent {
		return nil
	}
	res.sent = true

	for key, values := range res.header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	status := res.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if head || status == http.StatusNoContent || len(res.body) == 0 {
		return nil
	}
	_, err := w.Write(res.body)
	return err
}

func first(values []string, fallback string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}
