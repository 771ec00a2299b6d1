// Package wespeaker is the embedding.Provider for a WeSpeaker HTTP sidecar.
//
// The sidecar accepts a multipart upload on POST /embed with an optional
// start/end window in seconds and answers {"embedding": [...]}.
package wespeaker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kbukum/speakerkit/embedding"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/httpclient"
	"github.com/kbukum/speakerkit/provider"
	"github.com/kbukum/speakerkit/security"
)

const (
	// ProviderName is the name used in logs, metrics and errors.
	ProviderName = "wespeaker"

	defaultURL       = "http://localhost:8389"
	defaultTimeout   = 60 * time.Second
	defaultDimension = 256
)

// Config holds configuration for the WeSpeaker client.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Dimension is the expected vector length. Responses of any other
	// length are rejected.
	Dimension int `yaml:"dimension" mapstructure:"dimension"`
	// Model is reported in /stats only.
	Model string `yaml:"model" mapstructure:"model"`

	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	provider.ResilienceConfig `yaml:",inline" mapstructure:",squash"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Dimension <= 0 {
		c.Dimension = defaultDimension
	}
	if c.Model == "" {
		c.Model = "pyannote/wespeaker-voxceleb-resnet34-LM"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("wespeaker: base_url is required")
	}
	return nil
}

// Client implements embedding.Provider.
type Client struct {
	http      *httpclient.Adapter
	rr        provider.RequestResponse[embedding.EmbedRequest, embedding.Vector]
	dimension int
}

var _ embedding.Provider = (*Client)(nil)

// New creates a client. Middlewares wrap every embed call, outermost first.
func New(cfg Config, mws ...provider.Middleware[embedding.EmbedRequest, embedding.Vector]) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	adapter, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		TLS:     &cfg.TLS,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{http: adapter, dimension: cfg.Dimension}
	rr := provider.Adapt(ProviderName, provider.RequestResponse[httpclient.Request, *httpclient.Response](adapter),
		provider.Codec[embedding.EmbedRequest, embedding.Vector, httpclient.Request, *httpclient.Response]{
			Encode:  toRequest,
			Decode:  c.fromResponse,
			Failure: func(err error) error { return httpclient.Upstream(ProviderName, err) },
		})
	rr = provider.WithResilience(rr, cfg.ResilienceConfig)
	c.rr = provider.Chain(mws...)(rr)
	return c, nil
}

// Name returns the provider name.
func (c *Client) Name() string { return ProviderName }

// IsAvailable reports whether the sidecar answers its health check.
func (c *Client) IsAvailable(ctx context.Context) bool {
	return c.rr.IsAvailable(ctx) && c.http.Ping(ctx, "/health")
}

// Embed returns the embedding of the requested audio window.
func (c *Client) Embed(ctx context.Context, req embedding.EmbedRequest) (embedding.Vector, error) {
	return c.rr.Execute(ctx, req)
}

// Close releases idle connections.
func (c *Client) Close(ctx context.Context) error {
	return c.http.Close(ctx)
}

func toRequest(_ context.Context, req embedding.EmbedRequest) (httpclient.Request, error) {
	body := &httpclient.MultipartBody{
		Files: []httpclient.FileField{{FieldName: "audio", Path: req.AudioPath}},
	}
	if req.Span != nil {
		if err := req.Span.Validate(); err != nil {
			return httpclient.Request{}, err
		}
		body.Fields = map[string]string{
			"start": strconv.FormatFloat(req.Span.Start, 'f', -1, 64),
			"end":   strconv.FormatFloat(req.Span.End, 'f', -1, 64),
		}
	}
	return httpclient.Request{Method: http.MethodPost, Path: "/embed", Body: body}, nil
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

func (c *Client) fromResponse(resp *httpclient.Response) (embedding.Vector, error) {
	var out embedResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, errors.ValidationFailed("wespeaker returned an undecodable response").WithCause(err)
	}
	if out.Error != "" {
		return nil, errors.FromUpstream(ProviderName, fmt.Errorf("%s", out.Error))
	}
	if len(out.Embedding) == 0 {
		return nil, errors.ValidationFailed("wespeaker returned an empty embedding")
	}
	if len(out.Embedding) != c.dimension {
		return nil, errors.ValidationFailed(fmt.Sprintf(
			"wespeaker returned %d dimensions, expected %d", len(out.Embedding), c.dimension))
	}
	return embedding.Vector(out.Embedding), nil
}
