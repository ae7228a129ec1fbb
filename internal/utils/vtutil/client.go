// Package vtutil submits files to VirusTotal and waits for their analysis.
package vtutil

import (
	"fmt"
	"time"

	vt "github.com/VirusTotal/vt-go"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

// Default polling settings for analyses
const (
	DefaultPollingInterval = 15 * time.Second
	DefaultPollingTimeout  = 10 * time.Minute
)

// ClientConfig holds the client settings
type ClientConfig struct {
	APIKey          string
	CustomHost      string
	PollingInterval time.Duration
	PollingTimeout  time.Duration
}

// Client wraps a vt.Client with analysis polling
type Client struct {
	vtClient *vt.Client
	config   ClientConfig
}

// NewClient creates a VirusTotal client. Each call returns an independent
// client so actions never share state between invocations.
func NewClient(apiKey string, options ...func(*ClientConfig)) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: VirusTotal", errors.ErrAPIKeyMissing)
	}

	config := ClientConfig{
		APIKey:          apiKey,
		PollingInterval: DefaultPollingInterval,
		PollingTimeout:  DefaultPollingTimeout,
	}
	for _, option := range options {
		option(&config)
	}

	if config.CustomHost != "" {
		vt.SetHost(config.CustomHost)
	}

	return &Client{
		vtClient: vt.NewClient(apiKey),
		config:   config,
	}, nil
}

// WithPollingSettings overrides the analysis polling interval and timeout
func WithPollingSettings(interval, timeout time.Duration) func(*ClientConfig) {
	return func(c *ClientConfig) {
		if interval > 0 {
			c.PollingInterval = interval
		}
		if timeout > 0 {
			c.PollingTimeout = timeout
		}
	}
}

// WithCustomHost points the client at a different API host
func WithCustomHost(host string) func(*ClientConfig) {
	return func(c *ClientConfig) {
		c.CustomHost = host
	}
}
