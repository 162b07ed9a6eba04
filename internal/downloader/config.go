package downloader

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/tanq16/redl/internal/utils"
)

const (
	DefaultMaxRedirects = 1
	DefaultMaxRetries   = 5
	DefaultIdleTimeout  = 5 * time.Second
	DefaultSavePath     = "."
)

// Config describes one logical download. A zero numeric field selects the
// default for that field.
type Config struct {
	SavePath     string
	Filename     string
	MaxRedirects int
	MaxRetries   int
	IdleTimeout  time.Duration
	// RetryDelay is multiplied by the retry count before each retry.
	RetryDelay time.Duration
	Proxy      string
	NoClobber  bool
	Debug      bool
	// SaveErrorResponses stores the body of any non-redirect response,
	// whatever its status, instead of retrying 5xx and failing on the rest.
	SaveErrorResponses bool

	ShowProgress   bool
	ProgressWriter io.Writer
	ProgressFunc   func(total, current int64)

	HTTP   utils.HTTPClientConfig
	Logger *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.SavePath == "" {
		c.SavePath = DefaultSavePath
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = DefaultMaxRedirects
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.ProgressWriter == nil {
		c.ProgressWriter = os.Stdout
	}
	if c.Proxy != "" {
		c.HTTP.ProxyURL = c.Proxy
	}
	c.HTTP.Timeout = c.IdleTimeout
	return c
}
