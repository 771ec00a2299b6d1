package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/speakerkit/provider"
	"github.com/kbukum/speakerkit/resilience"
	"github.com/kbukum/speakerkit/version"
)

// Adapter is an HTTP client bound to one remote service. It satisfies
// provider.RequestResponse[Request, *Response] so it composes with the
// provider middleware chain.
type Adapter struct {
	client  *http.Client
	cfg     Config
	breaker *resilience.CircuitBreaker
}

var (
	_ provider.RequestResponse[Request, *Response] = (*Adapter)(nil)
	_ provider.Closeable                           = (*Adapter)(nil)
)

// Option customizes an Adapter.
type Option func(*Adapter)

// WithHTTPClient replaces the underlying *http.Client. The configured
// timeout is applied to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *Adapter) {
		hc.Timeout = a.cfg.Timeout
		a.client = hc
	}
}

// New creates an adapter from cfg.
func New(cfg Config, opts ...Option) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tlsCfg, err := cfg.TLS.ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("httpclient %s: %w", cfg.Name, err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}
	a := &Adapter{cfg: cfg, client: &http.Client{Transport: transport, Timeout: cfg.Timeout}}

	if cb := cfg.CircuitBreaker; cb != nil {
		bc := *cb
		if bc.Name == "" {
			bc.Name = cfg.Name
		}
		a.breaker = resilience.NewCircuitBreaker(bc)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Name returns the configured service name.
func (a *Adapter) Name() string { return a.cfg.Name }

// Config returns the adapter's configuration after defaults were applied.
func (a *Adapter) Config() Config { return a.cfg }

// IsAvailable reports false while the circuit breaker is open.
func (a *Adapter) IsAvailable(context.Context) bool {
	return a.breaker == nil || a.breaker.State() != resilience.StateOpen
}

// Execute is Do under the provider interface.
func (a *Adapter) Execute(ctx context.Context, req Request) (*Response, error) {
	return a.Do(ctx, req)
}

// Close releases idle connections.
func (a *Adapter) Close(context.Context) error {
	a.client.CloseIdleConnections()
	return nil
}

// Do sends req and reads the whole response. A non-2xx status returns the
// response together with a classified *Error.
func (a *Adapter) Do(ctx context.Context, req Request) (*Response, error) {
	if a.breaker == nil {
		return a.roundTrip(ctx, req)
	}
	var resp *Response
	err := a.breaker.Execute(func() (err error) {
		resp, err = a.roundTrip(ctx, req)
		return err
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		return nil, &Error{Kind: KindCircuitOpen, Message: a.cfg.Name + " circuit open", Err: err}
	}
	return resp, err
}

// Ping issues a GET to path and reports whether it answered 2xx. Probes
// bypass the circuit breaker so they never count as producer failures.
func (a *Adapter) Ping(ctx context.Context, path string) bool {
	resp, err := a.roundTrip(ctx, Request{Method: http.MethodGet, Path: path})
	return err == nil && resp.IsSuccess()
}

func (a *Adapter) roundTrip(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := a.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(ctx, fmt.Errorf("read response body: %w", err))
	}

	resp := &Response{StatusCode: httpResp.StatusCode, Headers: make(map[string]string, len(httpResp.Header)), Body: body}
	for k := range httpResp.Header {
		resp.Headers[k] = httpResp.Header.Get(k)
	}
	if e := statusError(resp.StatusCode, body); e != nil {
		return resp, e
	}
	return resp, nil
}

func (a *Adapter) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := req.payload()
	if err != nil {
		return nil, requestError("encode body: %v", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, a.url(req.Path), body)
	if err != nil {
		return nil, requestError("create request: %v", err)
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	h := httpReq.Header
	h.Set("User-Agent", version.UserAgent())
	for _, layer := range []map[string]string{a.cfg.Headers, req.Headers} {
		for k, v := range layer {
			h.Set(k, v)
		}
	}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}

	auth := req.Auth
	if auth == nil {
		auth = a.cfg.Auth
	}
	auth.apply(httpReq)
	return httpReq, nil
}

// url joins path onto the base URL unless path is already absolute.
func (a *Adapter) url(path string) string {
	if a.cfg.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(a.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// payload encodes the body. Multipart bodies always set their own content
// type because it carries the boundary.
func (r Request) payload() (io.Reader, string, error) {
	switch v := r.Body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		return v.encode()
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	}
	data, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}
