package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Files names the config and .env files a load reads. Empty fields are
// searched for.
type Files struct {
	Config string
	Env    string
}

// Option customizes LoadConfig.
type Option func(*loader)

type loader struct {
	files   Files
	exists  func(path string) bool
	loadEnv func(path string) error
	environ func() []string
}

// WithConfigFile reads path instead of searching for config.yml.
func WithConfigFile(path string) Option {
	return func(l *loader) { l.files.Config = path }
}

// WithEnvFile reads path instead of searching for a .env file.
func WithEnvFile(path string) Option {
	return func(l *loader) { l.files.Env = path }
}

// WithEnviron replaces os.Environ as the source of environment overrides.
func WithEnviron(environ func() []string) Option {
	return func(l *loader) { l.environ = environ }
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadConfig decodes configuration for service into cfg. Sources, lowest
// precedence first: the config file, the .env file, the process
// environment. A missing file is not an error; callers apply defaults
// afterwards.
func LoadConfig(service string, cfg interface{}, opts ...Option) error {
	l := &loader{
		exists:  fileExists,
		loadEnv: func(path string) error { return godotenv.Load(path) },
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(l)
	}
	files := l.resolve(service)

	v := viper.New()
	if files.Config != "" {
		v.SetConfigFile(files.Config)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", files.Config, err)
		}
	}
	if files.Env != "" {
		if err := l.loadEnv(files.Env); err != nil {
			return fmt.Errorf("load env %s: %w", files.Env, err)
		}
	}
	for key, value := range envOverrides(l.environ()) {
		v.Set(key, value)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode %s config: %w", service, err)
	}
	return nil
}

// resolve keeps explicit files that exist and searches for the rest.
func (l *loader) resolve(service string) Files {
	pick := func(explicit string, candidates []string) string {
		if explicit != "" {
			candidates = []string{explicit}
		}
		for _, path := range candidates {
			if l.exists(path) {
				return path
			}
		}
		return ""
	}
	return Files{
		Config: pick(l.files.Config, []string{
			"./cmd/" + service + "/config.yml",
			"../../cmd/" + service + "/config.yml",
			"./config.yml",
			"/etc/" + service + "/config.yml",
		}),
		Env: pick(l.files.Env, []string{
			"./cmd/" + service + "/.env",
			"./.env." + service,
			"./.env",
		}),
	}
}

// envOverrides maps each environment variable onto every nested key it
// could address, so QDRANT_API_KEY fills qdrant.api_key as well as
// qdrant.api.key.
func envOverrides(environ []string) map[string]string {
	out := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		for _, key := range keyVariants(name) {
			out[key] = value
		}
	}
	return out
}

// keyVariants lists the keys an env var name can stand for: the flat
// name, then the name with its first i underscores turned into dots.
func keyVariants(name string) []string {
	flat := strings.ToLower(name)
	parts := strings.Split(flat, "_")
	variants := []string{flat}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return variants
}
