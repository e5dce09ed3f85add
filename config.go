package traveltime

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	Version = "0.4.0"

	DefaultJSONBaseURL  = "https://api.traveltimeapp.com/v4/"
	DefaultProtoBaseURL = "https://proto.api.traveltimeapp.com/api/"
	DefaultTimeout      = 30 * time.Second
)

// UserAgent is sent with every JSON request.
var UserAgent = "Travel Time Go SDK " + Version

// Config holds the settings shared by every call made through one Client.
// It is read once by New.
type Config struct {
	ApplicationID string `validate:"required"`
	APIKey        string `validate:"required"`

	// HTTPClient supplies the underlying transport. Its Transport is wrapped
	// with the credential hooks; nil uses http.DefaultTransport.
	HTTPClient *http.Client

	// Timeout bounds each call. Zero falls back to HTTPClient.Timeout, then
	// DefaultTimeout.
	Timeout time.Duration

	EnableLogging bool
	EnableTracing bool

	// RaiseOnFailure turns non-2xx responses into an *Error carrying the
	// response. When false they are returned for the caller to inspect.
	RaiseOnFailure bool

	// DecodeBinaryErrors decodes non-2xx bodies from the fast endpoints. When
	// false those responses carry no body.
	DecodeBinaryErrors bool

	JSONBaseURL  string `validate:"omitempty,url"`
	ProtoBaseURL string `validate:"omitempty,url"`
}

// Option customises a Client beyond Config.
type Option func(*Client)

// WithLogger sets the logger and turns on request logging through it.
// Without it the client is silent unless Config.EnableLogging is set, in
// which case a production logger is built.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHTTPClient replaces Config.HTTPClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.cfg.HTTPClient = hc }
}

// WithRateLimit paces calls on both transports to r per second with the given
// burst. Callers block until a token is available. A burst below one is
// raised to one, since a zero burst would refuse every call.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, max(burst, 1)) }
}

// WithLimiter shares an existing limiter, e.g. between several clients.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func (cfg Config) timeout() time.Duration {
	switch {
	case cfg.Timeout > 0:
		return cfg.Timeout
	case cfg.HTTPClient != nil && cfg.HTTPClient.Timeout > 0:
		return cfg.HTTPClient.Timeout
	default:
		return DefaultTimeout
	}
}

func (cfg Config) transport() http.RoundTripper {
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		return cfg.HTTPClient.Transport
	}
	return http.DefaultTransport
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
