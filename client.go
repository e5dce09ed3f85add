package traveltime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/randytsao24/traveltime/internal/fastproto"
	"github.com/randytsao24/traveltime/internal/middleware"
)

// Client talks to the JSON and fast endpoints with one set of credentials.
// It is safe for concurrent use.
type Client struct {
	cfg       Config
	jsonHTTP  *http.Client
	protoHTTP *http.Client
	jsonBase  string
	protoBase string
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// New validates cfg and builds a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, newError(KindInvalidQuery, nil, err, validationMessage(err))
	}

	c := &Client{
		cfg:       cfg,
		jsonBase:  orDefault(cfg.JSONBaseURL, DefaultJSONBaseURL),
		protoBase: orDefault(cfg.ProtoBaseURL, DefaultProtoBaseURL),
	}
	for _, opt := range opts {
		opt(c)
	}

	logRequests := cfg.EnableLogging || c.logger != nil
	if c.logger == nil {
		c.logger = zap.NewNop()
		if cfg.EnableLogging {
			logger, err := zap.NewProduction()
			if err != nil {
				return nil, fmt.Errorf("creating logger: %w", err)
			}
			c.logger = logger
		}
	}

	var common []middleware.Middleware
	if logRequests {
		common = append(common, middleware.Logging(c.logger))
	}
	if cfg.EnableTracing {
		common = append(common, middleware.Tracing())
	}

	jsonChain := append(append([]middleware.Middleware{}, common...),
		middleware.APIKeyAuth(cfg.ApplicationID, cfg.APIKey, UserAgent))
	protoChain := append(append([]middleware.Middleware{}, common...),
		middleware.BasicAuth(cfg.ApplicationID, cfg.APIKey),
		middleware.Binary())

	base, timeout := c.cfg.transport(), c.cfg.timeout()
	c.jsonHTTP = &http.Client{Transport: middleware.Chain(base, jsonChain...), Timeout: timeout}
	c.protoHTTP = &http.Client{Transport: middleware.Chain(base, protoChain...), Timeout: timeout}
	return c, nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *zap.Logger { return c.logger }

// PerformJSONRequest sends a request to the JSON API. path is relative to
// the JSON base URL; payload, when non-nil, is sent as the JSON body.
func (c *Client) PerformJSONRequest(ctx context.Context, method, path string, query url.Values, payload any) (*Response, error) {
	endpoint, err := url.JoinPath(c.jsonBase, path)
	if err != nil {
		return nil, newError(KindInvalidQuery, nil, err, "")
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, newError(KindSerializationFailure, nil, err, "")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, newError(KindInvalidQuery, nil, err, "")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.perform(c.jsonHTTP, req, jsonStrategy())
}

// PerformBinaryRequest posts an already serialized fast request. path is
// relative to the proto base URL; version selects the decoder.
func (c *Client) PerformBinaryRequest(ctx context.Context, path string, body []byte, version fastproto.SchemaVersion) (*Response, error) {
	endpoint, err := url.JoinPath(c.protoBase, strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, newError(KindInvalidQuery, nil, err, "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindInvalidQuery, nil, err, "")
	}
	return c.perform(c.protoHTTP, req, binaryStrategy(version, c.cfg.DecodeBinaryErrors))
}

func (c *Client) perform(hc *http.Client, req *http.Request, s decodeStrategy) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, newError(KindTransportFailure, nil, err, "")
		}
	}
	resp, err := hc.Do(req)
	return c.unify(resp, err, s)
}
