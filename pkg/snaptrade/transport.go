package snaptrade

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HeaderRequestID carries the per-request ID shared by client and server logs.
const HeaderRequestID = "X-Request-ID"

// loggingTransport logs each round trip. Only the path is logged; the query
// carries userSecret.
type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func newLoggingTransport(base http.RoundTripper, logger *slog.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &loggingTransport{base: base, logger: logger}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	ctx := req.Context()

	requestID := req.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
		req = req.Clone(ctx)
		req.Header.Set(HeaderRequestID, requestID)
	}

	t.logger.LogAttrs(ctx, slog.LevelDebug, "request started",
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		t.logger.LogAttrs(ctx, slog.LevelWarn, "request failed",
			slog.String("request_id", requestID),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	t.logger.LogAttrs(ctx, slog.LevelInfo, "request completed",
		slog.String("request_id", requestID),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)
	return resp, nil
}
