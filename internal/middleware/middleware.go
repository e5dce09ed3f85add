// Package middleware provides http.RoundTripper hooks applied to every
// outbound request: authentication headers, content negotiation, logging
// and tracing.
package middleware

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	AppIDHeader     = "X-Application-Id"
	APIKeyHeader    = "X-Api-Key"
	UserAgentHeader = "User-Agent"

	OctetStream = "application/octet-stream"
)

// Middleware wraps a RoundTripper.
type Middleware func(http.RoundTripper) http.RoundTripper

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Chain applies middleware in order (first is outermost).
func Chain(rt http.RoundTripper, middleware ...Middleware) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	for i := len(middleware) - 1; i >= 0; i-- {
		rt = middleware[i](rt)
	}
	return rt
}

// Headers sets fixed headers on a clone of each request.
func Headers(headers map[string]string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = r.Clone(r.Context())
			for k, v := range headers {
				r.Header.Set(k, v)
			}
			return next.RoundTrip(r)
		})
	}
}

// APIKeyAuth sets the credential headers used by the JSON API.
func APIKeyAuth(appID, apiKey, userAgent string) Middleware {
	return Headers(map[string]string{
		AppIDHeader:     appID,
		APIKeyHeader:    apiKey,
		UserAgentHeader: userAgent,
	})
}

// BasicAuth sets Authorization: Basic base64(appID:apiKey), as the binary
// endpoints expect.
func BasicAuth(appID, apiKey string) Middleware {
	token := base64.StdEncoding.EncodeToString([]byte(appID + ":" + apiKey))
	return Headers(map[string]string{"Authorization": "Basic " + token})
}

// Binary marks the body and the accepted reply as Protocol Buffers bytes.
func Binary() Middleware {
	return Headers(map[string]string{
		"Content-Type": OctetStream,
		"Accept":       OctetStream,
	})
}

// Logging logs each request with method, URL, status and duration.
func Logging(logger *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			fields := []zap.Field{
				zap.String("request_id", uuid.NewString()),
				zap.String("method", r.Method),
				zap.String("url", r.URL.Redacted()),
			}

			resp, err := next.RoundTrip(r)
			fields = append(fields, zap.Duration("duration", time.Since(start)))
			if err != nil {
				logger.Warn("request failed", append(fields, zap.Error(err))...)
				return nil, err
			}

			logger.Info("request", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}

// Tracing records a client span per request with the global tracer provider.
func Tracing() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return otelhttp.NewTransport(next)
	}
}
