package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"

	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/cache"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/model"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/multiemployment"
	"github.com/xtc-codecheck/lohnfee-abrechnung-deutschland-sub001/internal/ratetable"
)

const (
	codeInvalidJSON  = "INVALID_JSON"
	codeInvalidInput = "INVALID_INPUT"
	codeUnknownYear  = "UNKNOWN_RATE_YEAR"
	codeNoEmployment = "NO_EMPLOYMENT"
	codeCancelled    = "CANCELLED"
	codeInternal     = "INTERNAL"

	cacheHeader = "X-Cache"
)

var errInternal = errors.New("internal server error")

type okResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

func writeJSON(ctx *fasthttp.RequestCtx, statusCode int, body any) {
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.SetStatusCode(statusCode)

	_ = json.NewEncoder(ctx).Encode(body)
}

func ok(ctx *fasthttp.RequestCtx, msg string) {
	writeJSON(ctx, fasthttp.StatusOK, okResponse{Status: "ok", Msg: msg})
}

func writeError(ctx *fasthttp.RequestCtx, httpStatus int, code string, err error) {
	writeJSON(ctx, httpStatus, model.ErrorResponse{Status: httpStatus, Code: code, Message: err.Error()})
}

// errorStatus maps the core's error kinds to a status and a stable code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return fasthttp.StatusBadRequest, codeInvalidInput
	case errors.Is(err, ratetable.ErrUnknownYear):
		return fasthttp.StatusNotFound, codeUnknownYear
	case errors.Is(err, multiemployment.ErrNoEmployment):
		return fasthttp.StatusUnprocessableEntity, codeNoEmployment
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fasthttp.StatusServiceUnavailable, codeCancelled
	}
	return fasthttp.StatusInternalServerError, codeInternal
}

func writeCoreError(ctx *fasthttp.RequestCtx, err error) {
	status, code := errorStatus(err)
	if status == fasthttp.StatusInternalServerError {
		log.Error().Err(err).Bytes("path", ctx.Path()).Msg("calculation failed")
		writeError(ctx, status, code, errInternal)
		return
	}
	writeError(ctx, status, code, err)
}

func decode(ctx *fasthttp.RequestCtx, v any) bool {
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, codeInvalidJSON, err)
		return false
	}
	return true
}

// cacheNamespace ties cached results to the current set of rate tables, so
// replacing a table at runtime stops serving results computed with the old
// one.
func (s *Service) cacheNamespace(name string) string {
	return name + "@" + strconv.FormatUint(s.rates.Generation(), 10)
}

// cached serves compute's result from c when the same request was seen
// before. Errors are never cached. The key is the hash of the request
// re-encoded from its decoded form, so formatting differences in the body do
// not matter.
func cached[T any](ctx context.Context, c cache.Cache, namespace string, req any, compute func() (T, error)) (T, bool, error) {
	if c == nil {
		out, err := compute()
		return out, false, err
	}

	var key string
	if body, err := json.Marshal(req); err == nil {
		key = cache.Key(namespace, body)
		if raw, hit := c.Get(ctx, key); hit {
			var out T
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, true, nil
			}
		}
	}

	out, err := compute()
	if err != nil || key == "" {
		return out, false, err
	}
	if raw, err := json.Marshal(out); err == nil {
		if err := c.Set(ctx, key, raw); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return out, false, nil
}

func markCache(ctx *fasthttp.RequestCtx, hit bool) {
	if hit {
		ctx.Response.Header.Set(cacheHeader, "HIT")
		return
	}
	ctx.Response.Header.Set(cacheHeader, "MISS")
}
