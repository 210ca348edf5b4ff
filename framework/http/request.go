package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const defaultMaxMemory = 32 << 20 // 32 MB

// ErrBodyTooLarge is returned when the request body exceeds the configured
// limit. The dispatcher's error boundary maps it to a 413.
var ErrBodyTooLarge = errors.New("http: request body too large")

// Request wraps *http.Request with the helpers handlers actually need. The
// kernel treats the underlying transport as opaque; nothing here depends on
// how the bytes arrived.
type Request struct {
	raw      *http.Request
	maxBody  int64 // 0 = unlimited
	body     []byte
	bodyRead bool
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// LimitBody caps how many body bytes Body and Bind will read.
func (req *Request) LimitBody(n int64) { req.maxBody = n }

// Method returns the HTTP method.
func (req *Request) Method() string { return req.raw.Method }

// Path returns the URL path.
func (req *Request) Path() string { return req.raw.URL.Path }

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}

// IsJSON returns true when the request expects a JSON response.
func (req *Request) IsJSON() bool {
	return strings.Contains(req.raw.Header.Get("Accept"), "application/json") ||
		strings.Contains(req.ContentType(), "application/json")
}

// BearerToken extracts the token from Authorization: Bearer <token>.
func (req *Request) BearerToken() string {
	auth := req.raw.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// IP returns the client address (respects the host mux's RealIP middleware).
func (req *Request) IP() string { return req.raw.RemoteAddr }

// ── Body ─────────────────────────────────────────────────────────────────────

// Body reads and caches the raw request body, honoring the LimitBody cap.
// Repeated calls return the same bytes.
func (req *Request) Body() ([]byte, error) {
	if req.bodyRead {
		return req.body, nil
	}
	var rd io.Reader = req.raw.Body
	if req.maxBody > 0 {
		rd = io.LimitReader(rd, req.maxBody+1)
	}
	b, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	if req.maxBody > 0 && int64(len(b)) > req.maxBody {
		return nil, ErrBodyTooLarge
	}
	req.body = b
	req.bodyRead = true
	return b, nil
}

// Bind decodes the request body into v.
// Supports JSON and application/x-www-form-urlencoded / multipart.
// JSON fields map via `json:"name"`, form fields via their json tags too.
func (req *Request) Bind(v any) error {
	ct := req.ContentType()

	switch {
	case strings.Contains(ct, "application/json"):
		return req.bindJSON(v)
	case strings.Contains(ct, "multipart/form-data"):
		if err := req.raw.ParseMultipartForm(defaultMaxMemory); err != nil {
			return err
		}
		return bindForm(req.raw.MultipartForm.Value, v)
	default:
		if err := req.raw.ParseForm(); err != nil {
			return err
		}
		return bindForm(map[string][]string(req.raw.PostForm), v)
	}
}

func (req *Request) bindJSON(v any) error {
	body, err := req.Body()
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("http: empty request body")
	}
	return json.Unmarshal(body, v)
}

// bindForm maps form values onto a struct via a JSON round-trip, which keeps
// nested structs working through json tags without extra dependencies.
func bindForm(values map[string][]string, v any) error {
	m := make(map[string]any, len(values))
	for k, vals := range values {
		if len(vals) == 1 {
			m[k] = vals[0]
		} else {
			m[k] = vals
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// ── Input helpers ────────────────────────────────────────────────────────────

// Input returns a single input value (query string OR post body).
func (req *Request) Input(key string, fallback ...string) string {
	_ = req.raw.ParseForm()
	v := req.raw.FormValue(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// Query returns a query-string value.
func (req *Request) Query(key string, fallback ...string) string {
	v := req.raw.URL.Query().Get(key)
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}

// All returns all input as a flat map (query + post).
func (req *Request) All() map[string]string {
	_ = req.raw.ParseForm()
	out := make(map[string]string)
	for k, v := range req.raw.Form {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// Has returns true if the key is present and non-empty.
func (req *Request) Has(key string) bool {
	return req.Input(key) != ""
}

// ── File uploads ─────────────────────────────────────────────────────────────

// File returns an uploaded file by field name.
func (req *Request) File(key string) (*multipart.FileHeader, error) {
	if err := req.raw.ParseMultipartForm(defaultMaxMemory); err != nil {
		return nil, err
	}
	_, fh, err := req.raw.FormFile(key)
	return fh, err
}

// Files returns all uploaded files for a field.
func (req *Request) Files(key string) ([]*multipart.FileHeader, error) {
	if err := req.raw.ParseMultipartForm(defaultMaxMemory); err != nil {
		return nil, err
	}
	if req.raw.MultipartForm == nil {
		return nil, errors.New("http: no multipart form")
	}
	return req.raw.MultipartForm.File[key], nil
}
