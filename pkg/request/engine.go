/*
Copyright 2024-2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/nscaledev/uni-apitest/pkg/constants"
)

// DefaultTimeout bounds an exchange when neither the engine nor the test
// specify a timeout.
const DefaultTimeout = 30 * time.Second

// TokenSource provides the bearer token attached to authenticated requests.
type TokenSource interface {
	AccessTokenValue() string
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (t StaticToken) AccessTokenValue() string {
	return string(t)
}

// Doer performs HTTP exchanges, *http.Client satisfies this.
type Doer interface {
	Do(request *http.Request) (*http.Response, error)
}

// Engine issues test requests against a single base URL.
type Engine struct {
	baseURL  string
	client   Doer
	logger   logr.Logger
	recorder Recorder
	headers  http.Header
	timeout  time.Duration
	tracing  bool
	bodies   bool

	tokenLock sync.RWMutex
	token     TokenSource

	inflight inflight
}

// Option customizes an Engine.
type Option func(*Engine)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client Doer) Option {
	return func(e *Engine) {
		e.client = client
	}
}

// WithLogger sets the logger, by default nothing is logged.
func WithLogger(logger logr.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithRecorder sets where assertion outcomes are reported.
func WithRecorder(recorder Recorder) Option {
	return func(e *Engine) {
		e.recorder = recorder
	}
}

// WithDefaultHeaders sets headers sent with every request.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(e *Engine) {
		for name, value := range headers {
			e.headers.Set(name, value)
		}
	}
}

// WithTimeout sets the default exchange timeout, zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		e.timeout = timeout
	}
}

// WithTracing controls whether W3C trace context headers are sent.
func WithTracing(enabled bool) Option {
	return func(e *Engine) {
		e.tracing = enabled
	}
}

// WithBodyLogging logs every response body.
func WithBodyLogging(enabled bool) Option {
	return func(e *Engine) {
		e.bodies = enabled
	}
}

// New creates an engine.  The token may be nil if no test uses BearerAuth.
func New(baseURL string, token TokenSource, options ...Option) *Engine {
	e := &Engine{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		client:   &http.Client{},
		logger:   logr.Discard(),
		recorder: nopRecorder{},
		headers:  http.Header{},
		timeout:  DefaultTimeout,
		tracing:  true,
		token:    token,
	}

	for _, o := range options {
		o(e)
	}

	return e
}

// BaseURL returns the URL all endpoints are relative to.
func (e *Engine) BaseURL() string {
	return e.baseURL
}

// SetToken replaces the bearer token e.g. after a refresh.  Requests already
// in flight are unaffected.
func (e *Engine) SetToken(token TokenSource) {
	e.tokenLock.Lock()
	defer e.tokenLock.Unlock()

	e.token = token
}

func (e *Engine) accessToken() string {
	e.tokenLock.RLock()
	defer e.tokenLock.RUnlock()

	if e.token == nil {
		return ""
	}

	return e.token.AccessTokenValue()
}

// URL returns the request URL for an endpoint.  Query parameters are
// appended in order, keys and values escaped.
func (e *Engine) URL(endpoint string, query []QueryParam) string {
	target := e.baseURL + endpoint

	if len(query) == 0 {
		return target
	}

	pairs := make([]string, len(query))

	for i, param := range query {
		pairs[i] = url.QueryEscape(param.Key) + "=" + url.QueryEscape(stringify(param.Value))
	}

	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}

	return target + separator + strings.Join(pairs, "&")
}

// Headers returns the request headers for a test.  Layers are applied in
// order, later ones winning: the body kind's content type, the engine
// defaults, the test's headers then the bearer token.  Multipart requests
// never carry a content type here as the boundary is only known once the
// body is encoded.
func (e *Engine) Headers(options TestOptions) http.Header {
	headers := http.Header{}

	if contentType := options.BodyKind.contentType(); contentType != "" {
		headers.Set("Content-Type", contentType)
	}

	for name, values := range e.headers {
		headers[name] = append([]string(nil), values...)
	}

	for name, value := range options.Headers {
		headers.Set(name, value)
	}

	if options.BearerAuth {
		if token := e.accessToken(); token != "" {
			headers.Set("Authorization", "Bearer "+token)
		} else {
			e.logger.Info("bearer auth requested without a token")
		}
	}

	if options.BodyKind == BodyFormData {
		headers.Del("Content-Type")
	}

	return headers
}

// Test starts the exchange in the background and returns immediately.
func (e *Engine) Test(ctx context.Context, description string, options TestOptions) *Pending {
	pending := newPending(e, description)

	e.inflight.add()

	go func() {
		defer e.inflight.done()

		pending.settle(e.exchange(ctx, description, options))
	}()

	return pending
}

// Wait blocks until every exchange and assertion started through the engine
// has settled, including chains nobody holds a reference to.
func (e *Engine) Wait(ctx context.Context) error {
	return e.inflight.wait(ctx)
}

// Get is Test with the GET method.
func (e *Engine) Get(ctx context.Context, description string, options TestOptions) *Pending {
	options.Method = http.MethodGet

	return e.Test(ctx, description, options)
}

// Post is Test with the POST method.
func (e *Engine) Post(ctx context.Context, description string, options TestOptions) *Pending {
	options.Method = http.MethodPost

	return e.Test(ctx, description, options)
}

// Put is Test with the PUT method.
func (e *Engine) Put(ctx context.Context, description string, options TestOptions) *Pending {
	options.Method = http.MethodPut

	return e.Test(ctx, description, options)
}

// Patch is Test with the PATCH method.
func (e *Engine) Patch(ctx context.Context, description string, options TestOptions) *Pending {
	options.Method = http.MethodPatch

	return e.Test(ctx, description, options)
}

// Delete is Test with the DELETE method.
func (e *Engine) Delete(ctx context.Context, description string, options TestOptions) *Pending {
	options.Method = http.MethodDelete

	return e.Test(ctx, description, options)
}

// newRequest builds the wire request.
func (e *Engine) newRequest(ctx context.Context, options TestOptions) (*http.Request, error) {
	method := strings.ToUpper(options.Method)
	if method == "" {
		method = http.MethodGet
	}

	var body *encodedBody

	if hasBody(method) && options.Body != nil {
		encoded, err := encodeBody(options.BodyKind, options.Body)
		if err != nil {
			return nil, err
		}

		body = encoded
	}

	var reader io.Reader

	if body != nil {
		reader = body.reader
	}

	request, err := http.NewRequestWithContext(ctx, method, e.URL(options.Endpoint, options.Query), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	request.Header = e.Headers(options)

	if body != nil && body.contentType != "" {
		request.Header.Set("Content-Type", body.contentType)
	}

	if e.tracing {
		request.Header.Set("traceparent", createTraceParent())
		request.Header.Set("tracestate", constants.TraceState)
	}

	return request, nil
}

// exchange performs the request and decodes the response.
func (e *Engine) exchange(ctx context.Context, description string, options TestOptions) (*Result, error) {
	log := e.logger.WithValues("test", description)

	timeout := options.Timeout
	if timeout == 0 {
		timeout = e.timeout
	}

	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	request, err := e.newRequest(ctx, options)
	if err != nil {
		return nil, e.abort(log, description, "failed to build request", err)
	}

	traceID := extractTraceID(request.Header.Get("traceparent"))

	log = log.WithValues("method", request.Method, "url", request.URL.String())
	if traceID != "" {
		log = log.WithValues("traceID", traceID)
	}

	log.V(1).Info("sending request")

	start := time.Now()

	response, err := e.client.Do(request)

	elapsed := time.Since(start)

	if err != nil {
		return nil, e.abort(log, description, "request failed", fmt.Errorf("%w: %s %s: %w", ErrNetwork, request.Method, request.URL.Path, err))
	}

	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, e.abort(log, description, "failed to read response", fmt.Errorf("%w: reading body: %w", ErrNetwork, err))
	}

	log.V(1).Info("received response", "status", response.StatusCode, "elapsed", elapsed)

	if e.bodies {
		log.Info("response body", "body", string(raw))
	}

	contentType := response.Header.Get("Content-Type")

	data, err := decodeBody(contentType, raw)
	if err != nil {
		return nil, e.abort(log, description, "failed to decode response", err, "contentType", contentType)
	}

	result := &Result{
		Description: description,
		Status:      response.StatusCode,
		StatusText:  statusText(response),
		Data:        data,
		Headers:     response.Header,
		Raw:         raw,
		Elapsed:     elapsed,
		TraceID:     traceID,
	}

	return result, nil
}

// abort logs and records a test that cannot complete.
func (e *Engine) abort(log logr.Logger, description, message string, err error, keysAndValues ...any) error {
	log.Error(err, message, keysAndValues...)
	e.recorder.Abort(description, err)

	return err
}

// observe logs and records an assertion outcome.
func (e *Engine) observe(outcome Outcome) {
	log := e.logger.WithValues("test", outcome.Description, "assertion", outcome.Assertion)

	if outcome.Passed {
		log.Info("assertion passed")
	} else {
		log.Error(nil, "assertion failed", "reason", outcome.Message)
	}

	e.recorder.Record(outcome)
}
