package service

import (
	"fmt"

	"github.com/kbukum/speakerkit/auth"
	"github.com/kbukum/speakerkit/cache"
	"github.com/kbukum/speakerkit/config"
	"github.com/kbukum/speakerkit/diarization/pyannote"
	"github.com/kbukum/speakerkit/embedding/wespeaker"
	"github.com/kbukum/speakerkit/identify"
	"github.com/kbukum/speakerkit/observability"
	"github.com/kbukum/speakerkit/server"
	"github.com/kbukum/speakerkit/storage"
	"github.com/kbukum/speakerkit/transcription/whisper"
)

// Config is the speakerd configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Cache         cache.Config         `yaml:"cache" mapstructure:"cache"`
	Diarization   pyannote.Config      `yaml:"diarization" mapstructure:"diarization"`
	Transcription whisper.Config       `yaml:"transcription" mapstructure:"transcription"`
	Embedding     wespeaker.Config     `yaml:"embedding" mapstructure:"embedding"`
	Speakers      StoreConfig          `yaml:"speakers" mapstructure:"speakers"`
	Identify      identify.Config      `yaml:"identify" mapstructure:"identify"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`

	// Workers bounds concurrent per-label identification.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ApplyDefaults fills in every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "speakerd"
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Cache.ApplyDefaults()
	c.Diarization.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Embedding.ApplyDefaults()
	c.Speakers.ApplyDefaults()
	c.Identify.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Observability.Environment = c.Environment
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	checks := []struct {
		section string
		fn      func() error
	}{
		{"service", c.ServiceConfig.Validate},
		{"server", c.Server.Validate},
		{"auth", c.Auth.Validate},
		{"storage", c.Storage.Validate},
		{"cache", c.Cache.Validate},
		{"embedding", c.Embedding.Validate},
		{"speakers", c.Speakers.Validate},
		{"identify", c.Identify.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, check := range checks {
		if err := check.fn(); err != nil {
			return fmt.Errorf("%s: %w", check.section, err)
		}
	}
	return nil
}
