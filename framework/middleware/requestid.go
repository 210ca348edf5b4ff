package middleware

import (
	"github.com/google/uuid"

	"github.com/strut-web/strut/framework/dispatch"
)

// HeaderRequestID is the header carrying the request id in and out.
const HeaderRequestID = "X-Request-ID"

// ContextKeyRequestID is the Context.Get key the request id is stored under.
const ContextKeyRequestID = "request_id"

// RequestID tags every request with an id, honoring an inbound X-Request-ID
// and generating a UUID otherwise. The id is echoed on the response and made
// available to later hooks via the context.
type RequestID struct {
	dispatch.NopMiddleware
}

func (RequestID) BeforeRoute(ctx *dispatch.Context) error {
	id := ctx.Request.Header(HeaderRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	ctx.Set(ContextKeyRequestID, id)
	ctx.Response.SetHeader(HeaderRequestID, id)
	return nil
}
