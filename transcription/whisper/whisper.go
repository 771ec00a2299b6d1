// Package whisper is the transcription.Provider for an OpenAI-compatible
// Whisper server such as faster-whisper-server or speaches.
package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kbukum/speakerkit/errors"
	"github.com/kbukum/speakerkit/httpclient"
	"github.com/kbukum/speakerkit/provider"
	"github.com/kbukum/speakerkit/security"
	"github.com/kbukum/speakerkit/transcript"
	"github.com/kbukum/speakerkit/transcription"
)

const (
	// ProviderName is the name used in logs, metrics and errors.
	ProviderName = "whisper"

	defaultWhisperURL     = "http://localhost:8000/v1"
	defaultWhisperModel   = "Systran/faster-distil-whisper-large-v3"
	defaultWhisperTimeout = 300 * time.Second
)

// Config holds configuration for the Whisper transcription provider.
type Config struct {
	URL      string        `yaml:"url" mapstructure:"url"`
	Model    string        `yaml:"model" mapstructure:"model"`
	Language string        `yaml:"language" mapstructure:"language"`
	APIKey   string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`

	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	provider.ResilienceConfig `yaml:",inline" mapstructure:",squash"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultWhisperURL
	}
	if c.Model == "" {
		c.Model = defaultWhisperModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultWhisperTimeout
	}
}

// Provider implements transcription.Provider.
type Provider struct {
	cfg  Config
	http *httpclient.Adapter
	rr   provider.RequestResponse[transcription.Request, *transcript.Transcription]
}

var _ transcription.Provider = (*Provider)(nil)

// NewProvider creates a new Whisper transcription provider. Middlewares wrap
// every transcribe call, outermost first.
func NewProvider(cfg Config, mws ...provider.Middleware[transcription.Request, *transcript.Transcription]) (*Provider, error) {
	cfg.ApplyDefaults()
	adapter, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.URL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.BearerAuth(cfg.APIKey),
		TLS:     &cfg.TLS,
	})
	if err != nil {
		return nil, err
	}

	p := &Provider{cfg: cfg, http: adapter}
	rr := provider.Adapt(ProviderName, provider.RequestResponse[httpclient.Request, *httpclient.Response](adapter),
		provider.Codec[transcription.Request, *transcript.Transcription, httpclient.Request, *httpclient.Response]{
			Encode:  p.toRequest,
			Decode:  fromResponse,
			Failure: func(err error) error { return httpclient.Upstream(ProviderName, err) },
		})
	rr = provider.WithResilience(rr, cfg.ResilienceConfig)
	p.rr = provider.Chain(mws...)(rr)
	return p, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// Model returns the configured default model.
func (p *Provider) Model() string { return p.cfg.Model }

// IsAvailable checks that the server lists its models.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.rr.IsAvailable(ctx) && p.http.Ping(ctx, "/models")
}

// Transcribe sends an audio file to the Whisper server and returns the
// transcription with word timings.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcript.Transcription, error) {
	return p.rr.Execute(ctx, req)
}

// Close releases idle connections.
func (p *Provider) Close(ctx context.Context) error {
	return p.http.Close(ctx)
}

func (p *Provider) toRequest(_ context.Context, req transcription.Request) (httpclient.Request, error) {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	fields := map[string]string{
		"model":           model,
		"response_format": "verbose_json",
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}
	if lang != "" {
		fields["language"] = lang
	}

	return httpclient.Request{
		Method: http.MethodPost,
		Path:   "/audio/transcriptions",
		Body: &httpclient.MultipartBody{
			Fields:      fields,
			MultiFields: map[string][]string{"timestamp_granularities[]": {"word", "segment"}},
			Files: []httpclient.FileField{{
				FieldName:   "file",
				Path:        req.AudioPath,
				ContentType: "audio/mpeg",
			}},
		},
	}, nil
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Words    []whisperWord    `json:"words"`
	Segments []whisperSegment `json:"segments"`
}

type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperSegment struct {
	Text  string        `json:"text"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Words []whisperWord `json:"words"`
}

func fromResponse(resp *httpclient.Response) (*transcript.Transcription, error) {
	var result whisperResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, errors.ValidationFailed("whisper returned an undecodable response").WithCause(err)
	}
	return toTranscription(&result), nil
}

// toTranscription converts the verbose_json document. Words nested in
// segments are lifted to the top level when the server omitted them there.
func toTranscription(resp *whisperResponse) *transcript.Transcription {
	out := &transcript.Transcription{
		Text:     resp.Text,
		Duration: resp.Duration,
		Language: resp.Language,
		Segments: make([]transcript.TextSegment, len(resp.Segments)),
		Words:    toTokens(resp.Words),
	}
	lift := len(out.Words) == 0
	for i, seg := range resp.Segments {
		words := toTokens(seg.Words)
		out.Segments[i] = transcript.TextSegment{Text: seg.Text, Start: seg.Start, End: seg.End, Words: words}
		if lift {
			out.Words = append(out.Words, words...)
		}
	}
	if out.Duration == 0 && len(resp.Segments) > 0 {
		out.Duration = resp.Segments[len(resp.Segments)-1].End
	}
	return out
}

func toTokens(words []whisperWord) []transcript.Token {
	if len(words) == 0 {
		return nil
	}
	tokens := make([]transcript.Token, len(words))
	for i, w := range words {
		tokens[i] = transcript.Token{Text: w.Word, Start: w.Start, End: w.End}
	}
	return tokens
}
