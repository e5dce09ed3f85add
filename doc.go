// Package traveltime is a client for the TravelTime API.
//
// Two transports are exposed. The JSON API under https://api.traveltimeapp.com/v4/
// is reached through PerformJSONRequest and a few thin endpoint helpers. The
// binary time-filter/fast endpoints take Protocol Buffers requests built from a
// FastQuery:
//
//	client, err := traveltime.New(traveltime.Config{
//	    ApplicationID: os.Getenv("TRAVELTIME_APP_ID"),
//	    APIKey:        os.Getenv("TRAVELTIME_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	walking, _ := traveltime.NewTransport("walking")
//	resp, err := client.TimeFilterFastProto(ctx, "uk", traveltime.FastQuery{
//	    Transport:  walking,
//	    Anchor:     traveltime.GeoPoint{Lat: 51.508930, Lng: -0.131387},
//	    Others:     []traveltime.GeoPoint{{Lat: 51.508824, Lng: -0.167093}},
//	    TravelTime: 1800,
//	})
//
// Both transports return the same *Response, and every failure is an *Error,
// whether it came from validation, the network, an HTTP status or a malformed
// body.
package traveltime
