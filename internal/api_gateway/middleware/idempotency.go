package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/transactionflow-billing/internal/billing"
	"github.com/transactionflow-billing/internal/config"
	"github.com/transactionflow-billing/internal/domain/idempotency"
)

const (
	// IdempotencyKeyHeader carries the client's idempotency key
	IdempotencyKeyHeader = "Idempotency-key"

	// IdempotentReplayedHeader is set on responses served from the idempotency store
	IdempotentReplayedHeader = "Idempotent-Replayed"

	// IdempotencyWarningHeader is set when a fresh response could not be stored
	IdempotencyWarningHeader = "X-Idempotency-Warning"
)

// responseCapture buffers the downstream response so the guard can store it before
// anything reaches the client
type responseCapture struct {
	gin.ResponseWriter
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newResponseCapture(w gin.ResponseWriter) *responseCapture {
	return &responseCapture{ResponseWriter: w, status: http.StatusOK}
}

func (w *responseCapture) WriteHeader(code int) {
	if code > 0 {
		w.status = code
		w.wroteHeader = true
	}
}

func (w *responseCapture) WriteHeaderNow() {
	w.wroteHeader = true
}

func (w *responseCapture) Write(data []byte) (int, error) {
	w.wroteHeader = true
	return w.body.Write(data)
}

func (w *responseCapture) WriteString(s string) (int, error) {
	w.wroteHeader = true
	return w.body.WriteString(s)
}

func (w *responseCapture) Status() int { return w.status }
func (w *responseCapture) Size() int { return w.body.Len() }
func (w *responseCapture) Written() bool { return w.wroteHeader }

func (w *responseCapture) response() idempotency.Response {
	return idempotency.Response{StatusCode: w.status, Body: bytes.Clone(w.body.Bytes())}
}

// Idempotency runs the rest of the chain at most once per Idempotency-key. The key
// must be numeric or opaque according to keyFormat. A retry with the same key, method,
// path and payload receives the stored status and body; a different request under a
// used key is rejected with 422.
func Idempotency(guard billing.IdempotencyGuard, keyFormat string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := parseIdempotencyKey(c.GetHeader(IdempotencyKeyHeader), keyFormat)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		req := idempotency.Request{
			Key:            key,
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			ParametersHash: idempotency.HashRequest(c.Request.URL.RawQuery, body),
		}

		original := c.Writer
		resp, replayed, err := guard.RunOnce(c.Request.Context(), req, func(ctx context.Context) (idempotency.Response, error) {
			capture := newResponseCapture(original)
			c.Writer = capture
			defer func() { c.Writer = original }()

			c.Next()
			return capture.response(), nil
		})

		requestLogger := logger.With("idempotency_key", key, "correlation_id", GetCorrelationID(c))
		switch {
		case err == nil:
		case errors.Is(err, idempotency.ErrKeyNotSet):
			requestLogger.Error("Idempotent response not stored", "error", err)
			c.Header(IdempotencyWarningHeader, "response was not stored, retrying this key may repeat the operation")
		case errors.Is(err, idempotency.ErrKeyReused):
			abortWithError(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", idempotency.ErrKeyReused.Error())
			return
		default:
			requestLogger.Error("Idempotency check failed", "error", err)
			abortWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred")
			return
		}

		if replayed {
			c.Header(IdempotentReplayedHeader, "true")
		}
		c.Data(resp.StatusCode, gin.MIMEJSON+"; charset=utf-8", resp.Body)
		c.Abort()
	}
}

func parseIdempotencyKey(raw, keyFormat string) (string, error) {
	if keyFormat == config.KeyFormatOpaque {
		return idempotency.ValidateOpaqueKey(raw)
	}
	n, err := idempotency.ParseNumericKey(raw)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n, 10), nil
}
