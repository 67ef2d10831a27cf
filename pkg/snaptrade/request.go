package snaptrade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tjfontaine/snaptrade-go/internal/signing"
)

// Param is one query parameter.
type Param = signing.Param

// Params is an ordered query. Order is preserved on the wire and in the
// signature.
type Params = signing.Params

// User identifies an end user registered under the partner.
type User struct {
	ID     string
	Secret string
}

// Request describes one call. The client never mutates it.
type Request struct {
	Method string
	// Endpoint is the escaped path, starting with /api/v1.
	Endpoint string
	// User scopes the call to an end user; nil for partner-level calls.
	User *User
	// Params are appended after timestamp, clientId, userId and userSecret.
	Params Params
	// Body is JSON-encoded for POST and PUT. GET and DELETE never send it.
	Body any
	// Timeout overrides the client timeout when positive.
	Timeout time.Duration
}

// RequestOption adjusts a single call made through an endpoint method.
type RequestOption func(*Request)

// WithRequestTimeout overrides the client timeout for one call.
func WithRequestTimeout(d time.Duration) RequestOption {
	return func(r *Request) {
		r.Timeout = d
	}
}

// Do signs and sends req and returns the raw response payload.
func (c *Client) Do(ctx context.Context, req *Request) (*Response[json.RawMessage], error) {
	return do[json.RawMessage](ctx, c, req)
}

// unixRounded returns t in Unix seconds rounded to the nearest second.
func unixRounded(t time.Time) int64 {
	return (t.UnixMilli() + 500) / 1000
}

func sendsBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut
}

func supportedMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

// query assembles the signed query in wire order.
func (c *Client) query(req *Request) Params {
	params := make(Params, 0, 4+len(req.Params))
	params.Add("timestamp", strconv.FormatInt(unixRounded(c.now()), 10))
	params.Add("clientId", c.clientID)
	if req.User != nil {
		if req.User.ID != "" {
			params.Add("userId", req.User.ID)
		}
		if req.User.Secret != "" {
			params.Add("userSecret", req.User.Secret)
		}
	}
	return append(params, req.Params...)
}

// encodeBody returns nil for methods without a body and for bodies that
// encode to null.
func encodeBody(req *Request) ([]byte, error) {
	if !sendsBody(req.Method) || req.Body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(payload, []byte("null")) {
		return nil, nil
	}
	return payload, nil
}

func do[T any](ctx context.Context, c *Client, req *Request, opts ...RequestOption) (*Response[T], error) {
	for _, opt := range opts {
		opt(req)
	}

	if !supportedMethod(req.Method) {
		return nil, &Error{Kind: KindUnsupportedMethod, Err: fmt.Errorf("method %q", req.Method)}
	}
	if req.Endpoint == "" {
		return nil, &Error{Kind: KindInvalidRequest, Err: errors.New("endpoint required")}
	}

	payload, err := encodeBody(req)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}
	query := c.query(req).Encode()
	signature, _, err := c.signer.SignRequest(payload, req.Endpoint, query)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("failed to sign request: %w", err)}
	}

	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "snaptrade "+req.Method+" "+req.Endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("snaptrade.method", req.Method),
			attribute.String("snaptrade.endpoint", req.Endpoint),
			attribute.Bool("snaptrade.user_scoped", req.User != nil),
		),
	)
	defer span.End()

	resp, err := c.send(ctx, req, query, payload, signature)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.Meta.Status))

	out := &Response[T]{Meta: resp.Meta}
	if len(bytes.TrimSpace(resp.Body)) > 0 {
		if err := json.Unmarshal(resp.Body, &out.Data); err != nil {
			decodeErr := &Error{Kind: KindDecode, Meta: resp.Meta, Body: resp.Body, Err: err}
			recordError(span, decodeErr)
			return nil, decodeErr
		}
	}
	return out, nil
}

type rawResponse struct {
	Meta Meta
	Body []byte
}

// send performs the single HTTP exchange. Non-2xx responses come back as a
// KindStatus error.
func (c *Client) send(ctx context.Context, req *Request, query string, payload []byte, signature string) (*rawResponse, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Endpoint+"?"+query, body)
	if err != nil {
		return nil, &Error{Kind: KindInvalidRequest, Err: fmt.Errorf("failed to create request: %w", redactURLError(err))}
	}
	httpReq.URL.RawQuery = query
	httpReq.Header.Set(signing.HeaderSignature, signature)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("request failed: %w", redactURLError(err))}
	}
	defer resp.Body.Close()

	meta := metaFrom(resp)
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Meta: meta, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Kind: KindStatus,
			Meta: meta,
			Body: respBody,
			API:  ParseErrorResponse(respBody),
		}
	}
	return &rawResponse{Meta: meta, Body: respBody}, nil
}

func recordError(span trace.Span, err error) {
	var e *Error
	if errors.As(err, &e) {
		span.SetAttributes(attribute.String("snaptrade.error_kind", e.Kind.String()))
		if e.Meta.Status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", e.Meta.Status))
		}
	}
	span.SetStatus(codes.Error, err.Error())
}

// redactURLError drops the query from a *url.Error. The query carries
// userSecret and must not reach logs or spans.
func redactURLError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		return &url.Error{Op: ue.Op, URL: "", Err: ue.Err}
	}
	u.RawQuery = ""
	u.ForceQuery = false
	return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
}
