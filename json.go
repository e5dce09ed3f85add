package traveltime

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MapInfo lists the supported maps and their features.
func (c *Client) MapInfo(ctx context.Context) (*Response, error) {
	return c.PerformJSONRequest(ctx, http.MethodGet, "map-info", nil, nil)
}

// SupportedLocations reports which map each location falls in.
func (c *Client) SupportedLocations(ctx context.Context, payload any) (*Response, error) {
	return c.PerformJSONRequest(ctx, http.MethodPost, "supported-locations", nil, payload)
}

// GeocodingParams narrows a forward geocoding search. Zero fields are
// omitted from the query string.
type GeocodingParams struct {
	Query         string `validate:"required"`
	WithinCountry string
	Exclude       string
	Limit         int `validate:"gte=0"`
	ForcePostcode bool
	// Bounds is min lat, min lng, max lat, max lng.
	Bounds []float64 `validate:"omitempty,len=4"`
}

func (p GeocodingParams) values() url.Values {
	v := url.Values{"query": {p.Query}}
	setIf(v, "within.country", p.WithinCountry)
	setIf(v, "exclude.location.types", p.Exclude)
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.ForcePostcode {
		v.Set("force.add.postcode", "true")
	}
	if len(p.Bounds) > 0 {
		parts := make([]string, len(p.Bounds))
		for i, b := range p.Bounds {
			parts[i] = formatCoord(b)
		}
		v.Set("bounds", strings.Join(parts, ","))
	}
	return v
}

// Geocoding searches for addresses matching p.Query.
func (c *Client) Geocoding(ctx context.Context, p GeocodingParams) (*Response, error) {
	if err := validate.Struct(p); err != nil {
		return nil, newError(KindInvalidQuery, nil, err, validationMessage(err))
	}
	return c.PerformJSONRequest(ctx, http.MethodGet, "geocoding/search", p.values(), nil)
}

// ReverseGeocoding finds the address at a point. withinCountry may be empty.
func (c *Client) ReverseGeocoding(ctx context.Context, at GeoPoint, withinCountry string) (*Response, error) {
	if err := validate.Struct(at); err != nil {
		return nil, newError(KindInvalidQuery, nil, err, validationMessage(err))
	}
	q := url.Values{"lat": {formatCoord(at.Lat)}, "lng": {formatCoord(at.Lng)}}
	setIf(q, "within.country", withinCountry)
	return c.PerformJSONRequest(ctx, http.MethodGet, "geocoding/reverse", q, nil)
}

// TimeFilter posts a full time-filter request. payload is marshalled as is.
func (c *Client) TimeFilter(ctx context.Context, payload any) (*Response, error) {
	return c.PerformJSONRequest(ctx, http.MethodPost, "time-filter", nil, payload)
}

// Routes posts a routes request.
func (c *Client) Routes(ctx context.Context, payload any) (*Response, error) {
	return c.PerformJSONRequest(ctx, http.MethodPost, "routes", nil, payload)
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
