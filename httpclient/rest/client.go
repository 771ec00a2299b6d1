package rest

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/kbukum/speakerkit/httpclient"
)

// Client sends JSON requests through an httpclient.Adapter.
type Client struct {
	http *httpclient.Adapter
}

// New creates a Client. Requests accept JSON unless cfg says otherwise.
func New(cfg httpclient.Config, opts ...httpclient.Option) (*Client, error) {
	headers := map[string]string{"Accept": "application/json"}
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	cfg.Headers = headers

	a, err := httpclient.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: a}, nil
}

// HTTP returns the underlying adapter.
func (c *Client) HTTP() *httpclient.Adapter { return c.http }

// CallOption adjusts one request.
type CallOption func(*httpclient.Request)

// Query adds a URL query parameter.
func Query(key, value string) CallOption {
	return func(r *httpclient.Request) {
		if r.Query == nil {
			r.Query = make(map[string]string)
		}
		r.Query[key] = value
	}
}

// Call sends in as the JSON body (nil for none) and decodes a successful
// response into out (nil to discard it). HTTP failures come back as
// *httpclient.Error.
func (c *Client) Call(ctx context.Context, method, path string, in, out any, opts ...CallOption) error {
	req := httpclient.Request{Method: method, Path: path, Body: in}
	for _, opt := range opts {
		opt(&req)
	}
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("rest: decode %s %s: %w", method, path, err)
	}
	return nil
}

// Get decodes the resource at path into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.Call(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post sends in and decodes the reply into out.
func (c *Client) Post(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	return c.Call(ctx, http.MethodPost, path, in, out, opts...)
}

// Put sends in and decodes the reply into out.
func (c *Client) Put(ctx context.Context, path string, in, out any, opts ...CallOption) error {
	return c.Call(ctx, http.MethodPut, path, in, out, opts...)
}

// Delete removes the resource at path and decodes the reply into out.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.Call(ctx, http.MethodDelete, path, nil, out, opts...)
}

// ErrorBody decodes the body of a failed call into out. It reports false
// when err carries no body or the body is not JSON.
func ErrorBody(err error, out any) bool {
	var httpErr *httpclient.Error
	if !stderrors.As(err, &httpErr) || len(httpErr.Body) == 0 {
		return false
	}
	return json.Unmarshal(httpErr.Body, out) == nil
}
