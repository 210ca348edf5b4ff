package middleware

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/strut-web/strut/framework/dispatch"
)

const contextKeyStart = "accesslog.start"

// AccessLog emits one structured log line per handled request. It observes
// only requests that reach the handler pipeline; routing misses are the
// dispatcher's concern.
type AccessLog struct {
	dispatch.NopMiddleware
	Log zerolog.Logger
}

// NewAccessLog creates the middleware around a logger.
func NewAccessLog(log zerolog.Logger) *AccessLog {
	return &AccessLog{Log: log}
}

func (m *AccessLog) BeforeRoute(ctx *dispatch.Context) error {
	ctx.Set(contextKeyStart, time.Now())
	return nil
}

func (m *AccessLog) AfterHandler(ctx *dispatch.Context) error {
	event := m.Log.Info().
		Str("method", ctx.Request.Method()).
		Str("path", ctx.Request.Path()).
		Int("status", ctx.Response.Status()).
		Str("ip", ctx.Request.IP())

	if v, ok := ctx.Get(contextKeyStart); ok {
		if start, ok := v.(time.Time); ok {
			event = event.Dur("duration", time.Since(start))
		}
	}
	if id, ok := ctx.Get(ContextKeyRequestID); ok {
		if s, ok := id.(string); ok {
			event = event.Str("request_id", s)
		}
	}
	event.Msg("request")
	return nil
}
