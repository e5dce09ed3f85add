package traveltime

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/randytsao24/traveltime/internal/fastproto"
)

// Response is the outcome of one call on either transport. Body holds the
// parsed JSON value (usually map[string]any), a string for non-JSON replies,
// or a *FastResult for the binary endpoints.
type Response struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    any               `json:"body"`
}

// Success reports a 2xx status.
func (r *Response) Success() bool {
	return r.Status >= 200 && r.Status <= 299
}

// Header returns a header value by case-insensitive name.
func (r *Response) Header(name string) string {
	return r.Headers[http.CanonicalHeaderKey(name)]
}

// FastResult returns the decoded binary body, if any.
func (r *Response) FastResult() (*FastResult, bool) {
	res, ok := r.Body.(*fastproto.Result)
	return res, ok && res != nil
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[http.CanonicalHeaderKey(k)] = strings.Join(v, ", ")
	}
	return out
}

// decodeStrategy turns a raw body into Response.Body for one transport.
type decodeStrategy struct {
	decode func(header http.Header, body []byte) (any, error)
	// onFailure also decodes non-2xx bodies, best effort.
	onFailure bool
}

func jsonStrategy() decodeStrategy {
	return decodeStrategy{decode: decodeJSON, onFailure: true}
}

func binaryStrategy(v fastproto.SchemaVersion, onFailure bool) decodeStrategy {
	return decodeStrategy{
		decode: func(_ http.Header, body []byte) (any, error) {
			return fastproto.Decode(v, body)
		},
		onFailure: onFailure,
	}
}

func decodeJSON(header http.Header, body []byte) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}
	if mt, _, err := mime.ParseMediaType(header.Get("Content-Type")); err != nil || !strings.Contains(mt, "json") {
		return string(body), nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// unify converts the result of one HTTP exchange into a Response or an
// *Error. It is the only place either transport builds them.
func (c *Client) unify(resp *http.Response, err error, s decodeStrategy) (*Response, error) {
	if err != nil {
		return nil, newError(KindTransportFailure, nil, err, "")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindTransportFailure, nil, err, "")
	}

	out := &Response{Status: resp.StatusCode, Headers: flattenHeaders(resp.Header)}
	if out.Success() {
		body, err := s.decode(resp.Header, raw)
		if err != nil {
			return nil, newError(KindDecodeFailure, nil, err, "")
		}
		out.Body = body
		return out, nil
	}

	if s.onFailure {
		if body, err := s.decode(resp.Header, raw); err == nil {
			out.Body = body
		}
	}
	if c.cfg.RaiseOnFailure {
		return nil, newError(KindHTTPStatusFailure, out, nil, "")
	}
	return out, nil
}
