package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/idilsaglam/fintrack/internal/logger"
)

const (
	// DefaultTimeout bounds every request end to end.
	DefaultTimeout = 10 * time.Second

	requestIDHeader = "X-Request-ID"
	contentTypeJSON = "application/json"
)

// Request is one call against the configured base URL.
type Request struct {
	Method string
	Path   string
	// Body is JSON-encoded when non-nil.
	Body interface{}
}

// Response is the raw wire response of a 2xx reply.
type Response struct {
	Status int
	Body   []byte
}

// Transport sends requests to the backend. Failures are *Error values.
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Get, Post, Put and Delete are verb helpers over any Transport.
func Get(ctx context.Context, t Transport, path string) (*Response, error) {
	return t.Do(ctx, Request{Method: fasthttp.MethodGet, Path: path})
}

func Post(ctx context.Context, t Transport, path string, body interface{}) (*Response, error) {
	return t.Do(ctx, Request{Method: fasthttp.MethodPost, Path: path, Body: body})
}

func Put(ctx context.Context, t Transport, path string, body interface{}) (*Response, error) {
	return t.Do(ctx, Request{Method: fasthttp.MethodPut, Path: path, Body: body})
}

func Delete(ctx context.Context, t Transport, path string) (*Response, error) {
	return t.Do(ctx, Request{Method: fasthttp.MethodDelete, Path: path})
}

// TokenSource yields a bearer token, or "" when none is available.
type TokenSource func() (string, error)

// Option customises an HTTPTransport.
type Option func(*HTTPTransport)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithDial replaces the TCP dialer, e.g. with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(t *HTTPTransport) { t.client.Dial = dial }
}

// WithBearer installs the Authorization hook. Without it no token is sent.
func WithBearer(src TokenSource) Option {
	return func(t *HTTPTransport) { t.tokens = src }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *HTTPTransport) {
		if l != nil {
			t.logger = l
		}
	}
}

// HTTPTransport is a fasthttp-backed Transport. Its configuration is fixed at
// construction and safe for concurrent use.
type HTTPTransport struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
	tokens  TokenSource
	logger  *zap.Logger
}

// NewHTTPTransport validates baseURL and builds the client.
func NewHTTPTransport(baseURL string, opts ...Option) (*HTTPTransport, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, WrapError(KindClient, "invalid base url", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, NewError(KindClient, fmt.Sprintf("invalid base url %q", baseURL))
	}

	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		// One attempt per call: fasthttp otherwise re-sends GET and PUT.
		client:  &fasthttp.Client{Name: "fintrack", MaxIdemponentCallAttempts: 1},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// BaseURL returns the configured API root.
func (t *HTTPTransport) BaseURL() string { return t.baseURL }

// Timeout returns the per-request deadline.
func (t *HTTPTransport) Timeout() time.Duration { return t.timeout }

type result struct {
	status int
	body   []byte
	err    error
}

// Do sends req and waits for the response, the client deadline or ctx,
// whichever comes first.
func (t *HTTPTransport) Do(ctx context.Context, r Request) (*Response, error) {
	reqID := logger.RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	log := t.logger.With(
		zap.String("request_id", reqID),
		zap.String("method", r.Method),
		zap.String("path", r.Path),
	)

	if err := ctx.Err(); err != nil {
		return nil, t.observe(log, contextError(err))
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	release := func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}

	req.SetRequestURI(t.baseURL + "/" + strings.TrimLeft(r.Path, "/"))
	req.Header.SetMethod(r.Method)
	req.Header.SetContentType(contentTypeJSON)
	req.Header.Set(fasthttp.HeaderAccept, contentTypeJSON)
	req.Header.Set(requestIDHeader, reqID)
	if r.Body != nil {
		b, err := json.Marshal(r.Body)
		if err != nil {
			release()
			return nil, t.observe(log, WrapError(KindClient, "encode request body", err))
		}
		req.SetBody(b)
	}
	if t.tokens != nil {
		token, err := t.tokens()
		if err != nil {
			release()
			return nil, t.observe(log, WrapError(KindClient, "load token", err))
		}
		if token != "" {
			req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
		}
	}

	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	// The goroutine owns req/resp until it finishes, even when ctx wins the race.
	done := make(chan result, 1)
	go func() {
		defer release()
		err := t.client.DoDeadline(req, resp, deadline)
		res := result{err: err}
		if err == nil {
			res.status = resp.StatusCode()
			res.body = append([]byte(nil), resp.Body()...)
		}
		done <- res
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, t.observe(log, contextError(ctx.Err()))
	case res = <-done:
	}

	if res.err != nil {
		return nil, t.observe(log, classify(res.err))
	}
	if res.status < 200 || res.status > 299 {
		return nil, t.observe(log, statusError(res.status, res.body))
	}
	log.Debug("api response", zap.Int("status", res.status), zap.Int("bytes", len(res.body)))
	return &Response{Status: res.status, Body: res.body}, nil
}

// observe is the response-side hook: it logs the failure under its category
// and hands it back untouched.
func (t *HTTPTransport) observe(log *zap.Logger, err *Error) error {
	switch err.Kind.Category() {
	case CategoryServer:
		log.Error("api error",
			zap.String("kind", string(err.Kind)),
			zap.Int("status", err.Status),
			zap.String("message", err.Message))
	case CategoryNetwork:
		log.Error("network error: no response received",
			zap.String("kind", string(err.Kind)),
			zap.Error(err.Err))
	default:
		log.Error("request error",
			zap.String("kind", string(err.Kind)),
			zap.String("message", err.Message),
			zap.Error(err.Err))
	}
	return err
}

func classify(err error) *Error {
	switch {
	case errors.Is(err, fasthttp.ErrTimeout), errors.Is(err, fasthttp.ErrDialTimeout):
		return WrapError(KindTimeout, "request timed out", err)
	default:
		return WrapError(KindNetwork, "no response received", err)
	}
}

func contextError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return WrapError(KindTimeout, "request timed out", err)
	}
	return WrapError(KindCanceled, "request canceled", err)
}

func statusError(status int, body []byte) *Error {
	var env struct {
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &env); err == nil {
		msg = env.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("server responded with status %d", status)
	}
	return &Error{Kind: KindServer, Status: status, Message: msg}
}
