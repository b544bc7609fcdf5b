package handler

import (
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

const requestIDHeader = "X-Request-ID"

func RecoveryMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer func() {
			if rvr := recover(); rvr != nil {
				log.Error().
					Interface("panic", rvr).
					Bytes("method", ctx.Method()).
					Str("url", ctx.URI().String()).
					Str("remote_addr", ctx.RemoteAddr().String()).
					Bytes("stack_trace", debug.Stack()).
					Msg("Recovered from panic")
				writeError(ctx, fasthttp.StatusInternalServerError, codeInternal, errInternal)
			}
		}()

		next(ctx)
	}
}

// LoggingMiddleware logs every request with its request id. An incoming
// X-Request-ID is kept, otherwise a new one is issued.
func LoggingMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		requestID := string(ctx.Request.Header.Peek(requestIDHeader))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx.SetUserValue("request-id", requestID)
		ctx.Response.Header.Set(requestIDHeader, requestID)

		begin := time.Now()
		next(ctx)
		log.Info().
			Str("request_id", requestID).
			Bytes("method", ctx.Method()).
			Bytes("path", ctx.Path()).
			Int("status", ctx.Response.StatusCode()).
			Dur("latency", time.Since(begin)).
			Msg("Completed request")
	}
}
