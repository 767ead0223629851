// Package fetch retrieves product pages over HTTP, either directly or
// through a headless browser for JavaScript-heavy sites.
package fetch

import "time"

// Defaults for page retrieval.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultRenderTimeout  = 60 * time.Second
	DefaultMaxBodyBytes   = 10 << 20
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "fr-FR,fr;q=0.9,en;q=0.8"
)

// Config controls page retrieval behavior.
type Config struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	RenderTimeout  time.Duration `mapstructure:"render_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	UserAgent      string        `mapstructure:"user_agent"`
	AcceptLanguage string        `mapstructure:"accept_language"`
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		Timeout:        DefaultTimeout,
		RenderTimeout:  DefaultRenderTimeout,
		MaxBodyBytes:   DefaultMaxBodyBytes,
		UserAgent:      DefaultUserAgent,
		AcceptLanguage: DefaultAcceptLanguage,
	}
}

// withDefaults fills zero values so a partially populated config from
// file or env still works.
func (c *Config) withDefaults() *Config {
	if c == nil {
		return NewConfig()
	}
	out := *c
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.RenderTimeout <= 0 {
		out.RenderTimeout = DefaultRenderTimeout
	}
	if out.MaxBodyBytes <= 0 {
		out.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if out.UserAgent == "" {
		out.UserAgent = DefaultUserAgent
	}
	if out.AcceptLanguage == "" {
		out.AcceptLanguage = DefaultAcceptLanguage
	}
	return &out
}
