// Package fastproto assembles and decodes the Protocol Buffers messages of the
// time-filter/fast endpoints.
//
// The wire schema is fixed by the remote service. It is declared here as
// descriptors and driven through dynamicpb, so requests for both API
// generations come from one builder:
//
//	msg, err := fastproto.Build(fastproto.Query{
//	    Transport:  transit.MustResolve("walking"),
//	    Anchor:     location.Point{Lat: 51.508930, Lng: -0.131387},
//	    Others:     []location.Point{{Lat: 51.508824, Lng: -0.167093}},
//	    TravelTime: 1800,
//	})
//
// msg.Version() tells the caller which endpoint generation must receive
// msg.Bytes(), and the same version decodes the reply.
package fastproto
