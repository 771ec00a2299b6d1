// Package pyannote is the diarization.Provider for a pyannote.audio HTTP
// sidecar.
package pyannote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kbukum/speakerkit/diarization"
	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/httpclient"
	"github.com/kbukum/speakerkit/provider"
	"github.com/kbukum/speakerkit/security"
	"github.com/kbukum/speakerkit/transcript"
)

const (
	// ProviderName is the name used in logs, metrics and errors.
	ProviderName = "pyannote"

	defaultPyannoteURL     = "http://localhost:8388"
	defaultPyannoteTimeout = 300 * time.Second
)

// Config holds configuration for the Pyannote diarization provider.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Model is reported in /stats only; the sidecar owns the pipeline.
	Model string `yaml:"model" mapstructure:"model"`

	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	provider.ResilienceConfig `yaml:",inline" mapstructure:",squash"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultPyannoteURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultPyannoteTimeout
	}
	if c.Model == "" {
		c.Model = "pyannote/speaker-diarization-community-1"
	}
}

// Provider implements diarization.Provider using the Pyannote HTTP sidecar.
type Provider struct {
	http *httpclient.Adapter
	rr   provider.RequestResponse[diarization.Request, *transcript.Diarization]
}

var _ diarization.Provider = (*Provider)(nil)

// NewProvider creates a new Pyannote diarization provider. Middlewares wrap
// every diarize call, outermost first.
func NewProvider(cfg Config, mws ...provider.Middleware[diarization.Request, *transcript.Diarization]) (*Provider, error) {
	cfg.ApplyDefaults()
	adapter, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		TLS:     &cfg.TLS,
	})
	if err != nil {
		return nil, err
	}

	rr := provider.Adapt(ProviderName, provider.RequestResponse[httpclient.Request, *httpclient.Response](adapter),
		provider.Codec[diarization.Request, *transcript.Diarization, httpclient.Request, *httpclient.Response]{
			Encode:  toRequest,
			Decode:  fromResponse,
			Failure: func(err error) error { return httpclient.Upstream(ProviderName, err) },
		})
	rr = provider.WithResilience(rr, cfg.ResilienceConfig)
	return &Provider{http: adapter, rr: provider.Chain(mws...)(rr)}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Pyannote sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.rr.IsAvailable(ctx) && p.http.Ping(ctx, "/health")
}

// Diarize sends audio to the Pyannote sidecar and returns diarization results.
func (p *Provider) Diarize(ctx context.Context, req diarization.Request) (*transcript.Diarization, error) {
	return p.rr.Execute(ctx, req)
}

// Close releases idle connections.
func (p *Provider) Close(ctx context.Context) error {
	return p.http.Close(ctx)
}

func toRequest(_ context.Context, req diarization.Request) (httpclient.Request, error) {
	if err := req.Hints.Validate(); err != nil {
		return httpclient.Request{}, err
	}
	fields := map[string]string{}
	if req.NumSpeakers > 0 {
		fields["num_speakers"] = strconv.Itoa(req.NumSpeakers)
	}
	if req.MinSpeakers > 0 {
		fields["min_speakers"] = strconv.Itoa(req.MinSpeakers)
	}
	if req.MaxSpeakers > 0 {
		fields["max_speakers"] = strconv.Itoa(req.MaxSpeakers)
	}
	if req.Exclusive {
		fields["exclusive"] = "true"
	}
	return httpclient.Request{
		Method: http.MethodPost,
		Path:   "/diarize",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files:  []httpclient.FileField{{FieldName: "audio", Path: req.AudioPath}},
		},
	}, nil
}

// --- internal Pyannote API types ---

type pyannoteResponse struct {
	Segments      []pyannoteSegment `json:"segments"`
	NumSpeakers   int               `json:"num_speakers"`
	AudioDuration float64           `json:"audio_duration"`
	Exclusive     bool              `json:"exclusive"`
	Error         string            `json:"error,omitempty"`
}

type pyannoteSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func fromResponse(resp *httpclient.Response) (*transcript.Diarization, error) {
	var result pyannoteResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, errors.ValidationFailed("pyannote returned an undecodable response").WithCause(err)
	}
	if result.Error != "" {
		return nil, errors.FromUpstream(ProviderName, fmt.Errorf("diarization error: %s", result.Error))
	}
	return toDiarization(&result)
}

func toDiarization(resp *pyannoteResponse) (*transcript.Diarization, error) {
	segments := make([]transcript.Segment, len(resp.Segments))
	labels := make(map[string]struct{})
	for i, seg := range resp.Segments {
		s := transcript.Segment{Speaker: seg.SpeakerID, Start: seg.StartTime, End: seg.EndTime}
		if err := s.Span().Validate(); err != nil {
			if appErr, ok := errors.AsAppError(err); ok {
				return nil, appErr.WithDetail("source", fmt.Sprintf("pyannote segment[%d]", i))
			}
			return nil, err
		}
		segments[i] = s
		labels[s.Speaker] = struct{}{}
	}

	numSpeakers := resp.NumSpeakers
	if numSpeakers <= 0 {
		numSpeakers = len(labels)
	}
	return &transcript.Diarization{
		Segments:      segments,
		NumSpeakers:   numSpeakers,
		AudioDuration: resp.AudioDuration,
		Exclusive:     resp.Exclusive,
	}, nil
}
