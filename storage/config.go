package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/kbukum/speakerkit/encryption"
)

// Archive backends.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
)

// Default configuration values.
const (
	DefaultUploadDir   = "/app/uploads"
	DefaultRegion      = "us-east-1"
	DefaultMaxFileSize = int64(500 * 1024 * 1024)
)

// DefaultExtensions are the accepted audio file extensions.
var DefaultExtensions = []string{".wav", ".mp3", ".flac", ".ogg", ".m4a", ".webm"}

// Config holds upload staging configuration.
type Config struct {
	// UploadDir is where uploads are staged for the producers.
	UploadDir string `yaml:"upload_dir" mapstructure:"upload_dir"`

	// MaxFileSize is the largest accepted upload in bytes.
	MaxFileSize int64 `yaml:"max_file_size" mapstructure:"max_file_size"`

	// Extensions lists accepted file extensions, including the dot.
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`

	// Archive keeps a copy of every upload.
	Archive ArchiveConfig `yaml:"archive" mapstructure:"archive"`
}

// ArchiveConfig selects where uploads are archived.
type ArchiveConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// Provider selects the backend: "local" or "s3".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Prefix is prepended to every archived key.
	Prefix string `yaml:"prefix" mapstructure:"prefix"`

	// BasePath is the root directory for the local provider.
	BasePath string `yaml:"base_path" mapstructure:"base_path"`

	// Bucket is the S3 bucket name.
	Bucket string `yaml:"bucket" mapstructure:"bucket"`

	// Region is the AWS region for S3.
	Region string `yaml:"region" mapstructure:"region"`

	// Endpoint is a custom S3-compatible endpoint (e.g. MinIO).
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`

	// AccessKey is the AWS access key ID.
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`

	// SecretKey is the AWS secret access key.
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`

	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	ForcePathStyle bool `yaml:"force_path_style" mapstructure:"force_path_style"`

	// EncryptionKey seals archived copies at rest when set.
	EncryptionKey string `yaml:"encryption_key" mapstructure:"encryption_key"`

	// Encryption selects the cipher: "aes-256-gcm" (default) or
	// "chacha20-poly1305".
	Encryption encryption.Algorithm `yaml:"encryption" mapstructure:"encryption"`

	// Retention prunes archived uploads older than this at startup. Zero
	// keeps everything.
	Retention time.Duration `yaml:"retention" mapstructure:"retention"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.UploadDir == "" {
		c.UploadDir = DefaultUploadDir
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	c.Archive.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.UploadDir == "" {
		return errors.New("storage: upload_dir is required")
	}
	if !c.Archive.Enabled {
		return nil
	}
	return c.Archive.Validate()
}

// ApplyDefaults fills in zero-valued fields.
func (c *ArchiveConfig) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderLocal
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Prefix == "" {
		c.Prefix = "uploads"
	}
}

// Validate checks that the configuration is valid for the selected provider.
func (c *ArchiveConfig) Validate() error {
	if err := c.Encryption.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if c.Retention < 0 {
		return errors.New("storage: retention must not be negative")
	}
	switch c.Provider {
	case ProviderLocal:
		if c.BasePath == "" {
			return errors.New("storage: base_path is required for local archive")
		}
	case ProviderS3:
		var errs []error
		if c.Bucket == "" {
			errs = append(errs, errors.New("bucket is required"))
		}
		if c.Region == "" {
			errs = append(errs, errors.New("region is required"))
		}
		if len(errs) > 0 {
			return fmt.Errorf("storage: invalid s3 archive: %w", errors.Join(errs...))
		}
	default:
		return fmt.Errorf("storage: unsupported provider %q", c.Provider)
	}
	return nil
}
