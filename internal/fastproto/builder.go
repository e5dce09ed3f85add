package fastproto

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/randytsao24/traveltime/internal/location"
	"github.com/randytsao24/traveltime/internal/transit"
)

var (
	ErrInvalidRequestType = errors.New("invalid request type")
	ErrSerialization      = errors.New("serializing fast request")
)

// Direction is the shape of a fast query.
type Direction uint8

const (
	OneToMany Direction = iota
	ManyToOne
)

func (d Direction) String() string {
	switch d {
	case OneToMany:
		return "one_to_many"
	case ManyToOne:
		return "many_to_one"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Query is one fast request. Anchor is the departure location for
// OneToMany and the arrival location for ManyToOne.
type Query struct {
	Transport    transit.Transport
	Anchor       location.Point
	Others       []location.Point `validate:"dive"`
	TravelTime   uint32           `validate:"gt=0,lte=2147483647"`
	Direction    Direction
	WantDistance bool
}

// Version is the schema generation able to carry the query.
func (q Query) Version() SchemaVersion {
	if q.Direction == ManyToOne || q.WantDistance {
		return V3
	}
	return V2
}

// Message is a serialized request bound to its schema version.
type Message struct {
	version SchemaVersion
	data    []byte
}

func (m *Message) Version() SchemaVersion { return m.version }

func (m *Message) Bytes() []byte { return m.data }

// Build assembles and serializes q. Building the same query twice yields the
// same bytes.
func Build(q Query) (*Message, error) {
	req, err := assemble(q)
	if err != nil {
		return nil, err
	}

	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return &Message{version: q.Version(), data: data}, nil
}

func assemble(q Query) (*dynamicpb.Message, error) {
	if q.Direction != OneToMany && q.Direction != ManyToOne {
		return nil, fmt.Errorf("%w: %s, must be %s or %s", ErrInvalidRequestType, q.Direction, OneToMany, ManyToOne)
	}

	s, err := schemaFor(q.Version())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	transportation, err := buildTransportation(s, q.Transport)
	if err != nil {
		return nil, err
	}

	searchDesc, locationField, requestField := s.oneToMany, "departureLocation", "oneToManyRequest"
	if q.Direction == ManyToOne {
		searchDesc, locationField, requestField = s.manyToOne, "arrivalLocation", "manyToOneRequest"
	}

	search := dynamicpb.NewMessage(searchDesc)
	coords := dynamicpb.NewMessage(s.coords)
	if err := setFields(coords,
		fieldValue{"lat", protoreflect.ValueOfFloat32(float32(q.Anchor.Lat))},
		fieldValue{"lng", protoreflect.ValueOfFloat32(float32(q.Anchor.Lng))},
	); err != nil {
		return nil, err
	}

	if err := setFields(search,
		fieldValue{protoreflect.Name(locationField), protoreflect.ValueOfMessage(coords)},
		fieldValue{"transportation", protoreflect.ValueOfMessage(transportation)},
		fieldValue{"arrivalTimePeriod", protoreflect.ValueOfEnum(0)},
		fieldValue{"travelTime", protoreflect.ValueOfInt32(int32(q.TravelTime))},
	); err != nil {
		return nil, err
	}
	if err := appendInt32s(search, "locationDeltas", location.BuildDeltas(q.Anchor, q.Others)); err != nil {
		return nil, err
	}
	if q.WantDistance {
		if err := appendInt32s(search, "properties", []int32{propertyDistances}); err != nil {
			return nil, err
		}
	}

	req := dynamicpb.NewMessage(s.request)
	if err := setFields(req, fieldValue{protoreflect.Name(requestField), protoreflect.ValueOfMessage(search)}); err != nil {
		return nil, err
	}
	return req, nil
}

// propertyDistances is TimeFilterFastRequest.Property.DISTANCES.
const propertyDistances = 1

func buildTransportation(s *schema, t transit.Transport) (*dynamicpb.Message, error) {
	transportation := dynamicpb.NewMessage(s.transportation)
	if err := setFields(transportation,
		fieldValue{"type", protoreflect.ValueOfEnum(protoreflect.EnumNumber(t.Mode().Code()))},
	); err != nil {
		return nil, err
	}

	if block, ok := detailBlocks[t.Mode()]; ok {
		if err := block.apply(s, t, transportation); err != nil {
			return nil, err
		}
	}
	return transportation, nil
}

type fieldValue struct {
	name  protoreflect.Name
	value protoreflect.Value
}

// dynamicpb panics on a value whose kind does not match the field.
func recoverSerialization(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrSerialization, r)
	}
}

func setFields(m protoreflect.Message, values ...fieldValue) (err error) {
	defer recoverSerialization(&err)
	for _, fv := range values {
		fd := m.Descriptor().Fields().ByName(fv.name)
		if fd == nil {
			return fmt.Errorf("%w: %s has no field %s", ErrSerialization, m.Descriptor().FullName(), fv.name)
		}
		m.Set(fd, fv.value)
	}
	return nil
}

func appendInt32s(m protoreflect.Message, name protoreflect.Name, values []int32) (err error) {
	defer recoverSerialization(&err)
	fd := m.Descriptor().Fields().ByName(name)
	if fd == nil {
		return fmt.Errorf("%w: %s has no field %s", ErrSerialization, m.Descriptor().FullName(), name)
	}
	list := m.Mutable(fd).List()
	for _, v := range values {
		if fd.Kind() == protoreflect.EnumKind {
			list.Append(protoreflect.ValueOfEnum(protoreflect.EnumNumber(v)))
			continue
		}
		list.Append(protoreflect.ValueOfInt32(v))
	}
	return nil
}
