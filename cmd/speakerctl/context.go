package main

import (
	"fmt"
	"os"
	"time"

	"github.com/kbukum/speakerkit/httpclient"
	"github.com/kbukum/speakerkit/httpclient/rest"
)

// commandContext carries the persistent flags shared by subcommands.
type commandContext struct {
	server  string
	token   string
	timeout time.Duration
	json    bool
}

// client builds a REST client for the configured server.
func (c *commandContext) client() (*rest.Client, error) {
	cfg := httpclient.Config{
		Name:    "speakerd",
		BaseURL: c.server,
		Timeout: c.timeout,
	}
	if c.token != "" {
		cfg.Auth = httpclient.BearerAuth(c.token)
	}
	return rest.New(cfg)
}

// serverError prefers the message of a speakerd error document over the
// raw HTTP error.
func serverError(err error) error {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if rest.ErrorBody(err, &body) && body.Error.Message != "" {
		return fmt.Errorf("%s: %s", body.Error.Code, body.Error.Message)
	}
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
