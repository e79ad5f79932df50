// Package logging builds the service logger and the gin request logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// logger fields
const (
	RequestID = "request_id"
	Component = "component"
	Method    = "method"
	Path      = "path"
	Status    = "status"
	Latency   = "latency"
	ClientIP  = "client_ip"
	Error     = "error"
)

// RequestIDHeader is read from incoming requests and echoed on responses.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New returns a logger writing to out. format "text" gives human readable
// console output, anything else gives JSON lines.
func New(level, format string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stdout
	}
	if format == "text" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// For returns a child logger tagged with the component name.
func For(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str(Component, component).Logger()
}

// RequestLogger logs one line per request and makes sure every request carries
// a request ID.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		default:
			event = logger.Info()
		}

		event = event.
			Str(RequestID, id).
			Str(Method, c.Request.Method).
			Str(Path, c.Request.URL.Path).
			Int(Status, status).
			Dur(Latency, time.Since(start)).
			Str(ClientIP, c.ClientIP())
		if len(c.Errors) > 0 {
			event = event.Str(Error, c.Errors.String())
		}
		event.Msg("request")
	}
}

// RequestIDFrom returns the request ID assigned by RequestLogger.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
