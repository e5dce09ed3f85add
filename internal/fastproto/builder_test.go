package fastproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/randytsao24/traveltime/internal/location"
	"github.com/randytsao24/traveltime/internal/transit"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	london      = location.Point{Lat: 51.508930, Lng: -0.131387}
	destination = location.Point{Lat: 51.508824, Lng: -0.167093}
)

func walkingQuery() Query {
	return Query{
		Transport:  transit.MustResolve("walking"),
		Anchor:     london,
		Others:     []location.Point{destination},
		TravelTime: 1800,
	}
}

// decodeRequest parses built bytes back with the request schema.
func decodeRequest(t *testing.T, msg *Message) protoreflect.Message {
	t.Helper()
	s, err := schemaFor(msg.Version())
	require.NoError(t, err)

	req := dynamicpb.NewMessage(s.request)
	require.NoError(t, proto.Unmarshal(msg.Bytes(), req))
	return req
}

func fieldOf(t *testing.T, m protoreflect.Message, name protoreflect.Name) protoreflect.FieldDescriptor {
	t.Helper()
	fd := m.Descriptor().Fields().ByName(name)
	require.NotNil(t, fd, "field %s on %s", name, m.Descriptor().FullName())
	return fd
}

func has(t *testing.T, m protoreflect.Message, name protoreflect.Name) bool {
	t.Helper()
	return m.Has(fieldOf(t, m, name))
}

func child(t *testing.T, m protoreflect.Message, name protoreflect.Name) protoreflect.Message {
	t.Helper()
	require.True(t, has(t, m, name), "field %s not set", name)
	return m.Get(fieldOf(t, m, name)).Message()
}

func wrappedValue(t *testing.T, m protoreflect.Message, name protoreflect.Name) uint32 {
	t.Helper()
	w := child(t, m, name)
	return uint32(w.Get(fieldOf(t, w, "value")).Uint())
}

func transportationOf(t *testing.T, q Query) protoreflect.Message {
	t.Helper()
	msg, err := Build(q)
	require.NoError(t, err)
	req := decodeRequest(t, msg)
	return child(t, child(t, req, "oneToManyRequest"), "transportation")
}

// ---------------------------------------------------------------------------
// Envelope
// ---------------------------------------------------------------------------

func TestBuildOneToMany(t *testing.T) {
	msg, err := Build(walkingQuery())
	require.NoError(t, err)
	assert.Equal(t, V2, msg.Version())

	req := decodeRequest(t, msg)
	assert.True(t, has(t, req, "oneToManyRequest"))

	search := child(t, req, "oneToManyRequest")
	coords := child(t, search, "departureLocation")
	assert.InDelta(t, london.Lat, coords.Get(fieldOf(t, coords, "lat")).Float(), 1e-5)
	assert.InDelta(t, london.Lng, coords.Get(fieldOf(t, coords, "lng")).Float(), 1e-5)

	deltas := search.Get(fieldOf(t, search, "locationDeltas")).List()
	require.Equal(t, 2, deltas.Len())
	assert.Equal(t, int64(-11), deltas.Get(0).Int())
	assert.Equal(t, int64(-3571), deltas.Get(1).Int())

	assert.Equal(t, int64(1800), search.Get(fieldOf(t, search, "travelTime")).Int())
	assert.Equal(t, protoreflect.EnumNumber(0), search.Get(fieldOf(t, search, "arrivalTimePeriod")).Enum())

	tr := child(t, search, "transportation")
	assert.Equal(t, protoreflect.EnumNumber(transit.Walking.Code()), tr.Get(fieldOf(t, tr, "type")).Enum())
}

func TestBuildManyToOne(t *testing.T) {
	q := walkingQuery()
	q.Direction = ManyToOne

	msg, err := Build(q)
	require.NoError(t, err)
	assert.Equal(t, V3, msg.Version())

	req := decodeRequest(t, msg)
	assert.False(t, has(t, req, "oneToManyRequest"))

	search := child(t, req, "manyToOneRequest")
	assert.True(t, has(t, search, "arrivalLocation"))

	deltas := search.Get(fieldOf(t, search, "locationDeltas")).List()
	require.Equal(t, 2, deltas.Len())
	assert.Equal(t, int64(-11), deltas.Get(0).Int())
	assert.Equal(t, int64(-3571), deltas.Get(1).Int())
	assert.Equal(t, 0, search.Get(fieldOf(t, search, "properties")).List().Len())
}

func TestBuildOneToManyLeavesManyToOneUnset(t *testing.T) {
	q := walkingQuery()
	q.WantDistance = true

	msg, err := Build(q)
	require.NoError(t, err)
	assert.Equal(t, V3, msg.Version())

	req := decodeRequest(t, msg)
	assert.True(t, has(t, req, "oneToManyRequest"))
	assert.False(t, has(t, req, "manyToOneRequest"))
}

func TestBuildWithDistance(t *testing.T) {
	q := walkingQuery()
	q.WantDistance = true

	msg, err := Build(q)
	require.NoError(t, err)

	search := child(t, decodeRequest(t, msg), "oneToManyRequest")
	props := search.Get(fieldOf(t, search, "properties")).List()
	require.Equal(t, 1, props.Len())
	assert.Equal(t, protoreflect.EnumNumber(propertyDistances), props.Get(0).Enum())
}

func TestBuildInvalidDirection(t *testing.T) {
	q := walkingQuery()
	q.Direction = Direction(7)

	_, err := Build(q)
	assert.ErrorIs(t, err, ErrInvalidRequestType)
}

func TestBuildIsDeterministic(t *testing.T) {
	q := Query{
		Transport: mustDetails(t, "driving+pt", transit.Details{
			transit.WalkingTimeToStation: 600,
			transit.DrivingTimeToStation: 1200,
			transit.ParkingTime:          300,
		}),
		Anchor:       london,
		Others:       []location.Point{destination, {Lat: 51.5, Lng: -0.12}, {Lat: 51.51, Lng: -0.1}},
		TravelTime:   3600,
		Direction:    ManyToOne,
		WantDistance: true,
	}

	first, err := Build(q)
	require.NoError(t, err)
	second, err := Build(q)
	require.NoError(t, err)
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestBuildWireFormat(t *testing.T) {
	q := Query{
		Transport:  transit.MustResolve("walking"),
		Anchor:     location.Point{Lat: 1, Lng: 2},
		Others:     []location.Point{{Lat: 1.00001, Lng: 2.00002}},
		TravelTime: 1800,
	}

	msg, err := Build(q)
	require.NoError(t, err)

	want := []byte{
		0x0a, 0x17, // oneToManyRequest
		0x0a, 0x0a, // departureLocation
		0x0d, 0x00, 0x00, 0x80, 0x3f, // lat 1.0
		0x15, 0x00, 0x00, 0x00, 0x40, // lng 2.0
		0x12, 0x02, 0x02, 0x04, // locationDeltas [1, 2] zigzag
		0x1a, 0x02, 0x08, 0x04, // transportation WALKING
		0x28, 0x90, 0x1c, // travelTime 1800 zigzag
	}
	assert.Equal(t, want, msg.Bytes())
}

// ---------------------------------------------------------------------------
// Transport details
// ---------------------------------------------------------------------------

func mustDetails(t *testing.T, name string, details transit.Details) transit.Transport {
	t.Helper()
	tr, err := transit.ResolveWithDetails(name, details)
	require.NoError(t, err)
	return tr
}

func TestPublicTransportDetails(t *testing.T) {
	q := walkingQuery()
	q.Transport = mustDetails(t, "pt", transit.Details{transit.WalkingTimeToStation: 600})

	tr := transportationOf(t, q)
	assert.Equal(t, protoreflect.EnumNumber(0), tr.Get(fieldOf(t, tr, "type")).Enum())

	pt := child(t, tr, "publicTransport")
	assert.Equal(t, "com.igeolise.traveltime.rabbitmq.requests.OptionalPositiveUInt32",
		string(child(t, pt, "walkingTimeToStation").Descriptor().FullName()))
	assert.Equal(t, uint32(600), wrappedValue(t, pt, "walkingTimeToStation"))
	assert.False(t, has(t, tr, "drivingAndPublicTransport"))
}

func TestPublicTransportWithoutDetails(t *testing.T) {
	q := walkingQuery()
	q.Transport = transit.MustResolve("pt")

	tr := transportationOf(t, q)
	assert.False(t, has(t, tr, "publicTransport"))
}

func TestDrivingAndPublicTransportAllDetails(t *testing.T) {
	q := walkingQuery()
	q.Transport = mustDetails(t, "driving+pt", transit.Details{
		transit.WalkingTimeToStation: 600,
		transit.DrivingTimeToStation: 1200,
		transit.ParkingTime:          300,
	})

	tr := transportationOf(t, q)
	assert.Equal(t, protoreflect.EnumNumber(2), tr.Get(fieldOf(t, tr, "type")).Enum())

	d := child(t, tr, "drivingAndPublicTransport")
	assert.Equal(t, uint32(600), wrappedValue(t, d, "walkingTimeToStation"))
	assert.Equal(t, uint32(1200), wrappedValue(t, d, "drivingTimeToStation"))
	assert.Equal(t, uint32(300), wrappedValue(t, d, "parkingTime"))

	assert.Equal(t, protoreflect.Name("OptionalPositiveUInt32"), child(t, d, "walkingTimeToStation").Descriptor().Name())
	assert.Equal(t, protoreflect.Name("OptionalPositiveUInt32"), child(t, d, "drivingTimeToStation").Descriptor().Name())
	assert.Equal(t, protoreflect.Name("OptionalNonNegativeUInt32"), child(t, d, "parkingTime").Descriptor().Name())
}

func TestDrivingAndPublicTransportPartialDetails(t *testing.T) {
	q := walkingQuery()
	q.Transport = mustDetails(t, "driving+pt", transit.Details{transit.DrivingTimeToStation: 1200})

	d := child(t, transportationOf(t, q), "drivingAndPublicTransport")
	assert.Equal(t, uint32(1200), wrappedValue(t, d, "drivingTimeToStation"))
	assert.False(t, has(t, d, "walkingTimeToStation"))
	assert.False(t, has(t, d, "parkingTime"))
}

func TestDrivingAndPublicTransportZeroParkingTime(t *testing.T) {
	q := walkingQuery()
	q.Transport = mustDetails(t, "driving+pt", transit.Details{transit.ParkingTime: 0})

	d := child(t, transportationOf(t, q), "drivingAndPublicTransport")
	assert.True(t, has(t, d, "parkingTime"))
	assert.Zero(t, wrappedValue(t, d, "parkingTime"))
}

func TestDrivingAndPublicTransportWithoutDetails(t *testing.T) {
	q := walkingQuery()
	q.Transport = transit.MustResolve("driving+pt")

	tr := transportationOf(t, q)
	assert.False(t, has(t, tr, "drivingAndPublicTransport"))
}

func TestPlainModesCarryNoDetails(t *testing.T) {
	for _, name := range []string{"driving", "driving+ferry", "walking", "cycling", "cycling+ferry", "walking+ferry"} {
		q := walkingQuery()
		q.Transport = transit.MustResolve(name)

		tr := transportationOf(t, q)
		assert.Equal(t, protoreflect.EnumNumber(q.Transport.Mode().Code()), tr.Get(fieldOf(t, tr, "type")).Enum(), name)
		assert.False(t, has(t, tr, "publicTransport"), name)
		assert.False(t, has(t, tr, "drivingAndPublicTransport"), name)
	}
}

func TestSetFieldsKindMismatch(t *testing.T) {
	s, err := schemaFor(V2)
	require.NoError(t, err)

	coords := dynamicpb.NewMessage(s.coords)
	err = setFields(coords, fieldValue{"lat", protoreflect.ValueOfString("north")})
	assert.ErrorIs(t, err, ErrSerialization)

	err = setFields(coords, fieldValue{"altitude", protoreflect.ValueOfFloat32(1)})
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestAppendInt32sToScalarField(t *testing.T) {
	s, err := schemaFor(V2)
	require.NoError(t, err)

	search := dynamicpb.NewMessage(s.oneToMany)
	assert.ErrorIs(t, appendInt32s(search, "travelTime", []int32{1}), ErrSerialization)
	assert.ErrorIs(t, appendInt32s(search, "missing", []int32{1}), ErrSerialization)
}
