package middleware

import (
	"net/http"
	"time"

	"novapos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CodigoErrorInterno tags every 500 body so clients can tell it apart from
// domain errors.
const CodigoErrorInterno = "error_interno"

const mensajeErrorInterno = "Error interno del servidor"

// fallaInterna answers 500 unless the handler already wrote a response.
func fallaInterna(c *gin.Context) {
	if c.Writer.Written() {
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.NewCode(CodigoErrorInterno, mensajeErrorInterno))
}

// ErrorHandler reports the last error a handler attached with c.Error. The
// cause goes to the log with the request id; the client only sees the
// generic body.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("route", c.FullPath()).
			Str("method", c.Request.Method).
			Int("errors", len(c.Errors)).
			Err(c.Errors.Last().Err).
			Msg("http: handler error")
		fallaInterna(c)
	}
}

// Recovery turns a panic in any later handler into the same 500 body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("route", c.FullPath()).
				Interface("panic", r).
				Msg("http: panic recovered")
			fallaInterna(c)
		}()
		c.Next()
	}
}

// rutasSondeo are polled by orchestrators and scrapers; they log at debug.
var rutasSondeo = map[string]bool{"/health": true, "/metrics": true}

// Logger writes one line per request. The level follows the status: error
// for 5xx, warn for 4xx, info otherwise.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		inicio := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		case rutasSondeo[c.Request.URL.Path]:
			ev = log.Debug()
		default:
			ev = log.Info()
		}
		ev.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(inicio)).
			Msg("http: request")
	}
}
