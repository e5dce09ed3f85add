package traveltime

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/randytsao24/traveltime/internal/fastproto"
	"github.com/randytsao24/traveltime/internal/location"
	"github.com/randytsao24/traveltime/internal/transit"
)

type (
	GeoPoint         = location.Point
	Transport        = transit.Transport
	TransportMode    = transit.Mode
	TransportDetails = transit.Details
	DetailKey        = transit.DetailKey
	FastQuery        = fastproto.Query
	FastResult       = fastproto.Result
	Direction        = fastproto.Direction
	SchemaVersion    = fastproto.SchemaVersion
)

const (
	OneToMany = fastproto.OneToMany
	ManyToOne = fastproto.ManyToOne

	WalkingTimeToStation = transit.WalkingTimeToStation
	DrivingTimeToStation = transit.DrivingTimeToStation
	ParkingTime          = transit.ParkingTime
)

// NewTransport resolves a mode name such as "pt" or "driving+ferry".
func NewTransport(name string) (Transport, error) {
	t, err := transit.Resolve(name)
	if err != nil {
		return Transport{}, wrapError(err)
	}
	return t, nil
}

// NewTransportWithDetails resolves a mode name and attaches its optional
// details.
func NewTransportWithDetails(name string, details TransportDetails) (Transport, error) {
	t, err := transit.ResolveWithDetails(name, details)
	if err != nil {
		return Transport{}, wrapError(err)
	}
	return t, nil
}

// DecodeTransport parses a transport given either as a bare mode name in
// JSON ("pt") or as an object with a "type" key and its details.
func DecodeTransport(data []byte) (Transport, error) {
	var t Transport
	if err := json.Unmarshal(data, &t); err != nil {
		return Transport{}, wrapError(err)
	}
	return t, nil
}

// TimeFilterFastProto runs a fast time filter query against the binary
// endpoint for country. The decoded body is available via
// Response.FastResult.
func (c *Client) TimeFilterFastProto(ctx context.Context, country string, q FastQuery) (*Response, error) {
	if country == "" {
		return nil, newError(KindInvalidQuery, nil, nil, "country is required")
	}
	if err := validate.Struct(q); err != nil {
		return nil, newError(KindInvalidQuery, nil, err, validationMessage(err))
	}

	msg, err := fastproto.Build(q)
	if err != nil {
		return nil, wrapError(err)
	}
	return c.send(ctx, msg, country, q.Transport.Mode())
}

func (c *Client) send(ctx context.Context, msg *fastproto.Message, country string, mode TransportMode) (*Response, error) {
	path, err := url.JoinPath(string(msg.Version()), url.PathEscape(country), "time-filter", "fast", mode.URLName())
	if err != nil {
		return nil, newError(KindInvalidQuery, nil, err, "")
	}
	return c.PerformBinaryRequest(ctx, path, msg.Bytes(), msg.Version())
}
