package fastproto

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/randytsao24/traveltime/internal/transit"
)

type detailField struct {
	key   transit.DetailKey
	field protoreflect.Name
	// nonNegative selects OptionalNonNegativeUInt32, where zero is a value.
	nonNegative bool
}

// detailBlock describes the details message a mode attaches to
// Transportation.
type detailBlock struct {
	field   protoreflect.Name
	message func(*schema) protoreflect.MessageDescriptor
	fields  []detailField
}

var detailBlocks = map[transit.Mode]detailBlock{
	transit.PublicTransport: {
		field:   "publicTransport",
		message: func(s *schema) protoreflect.MessageDescriptor { return s.ptDetails },
		fields: []detailField{
			{key: transit.WalkingTimeToStation, field: "walkingTimeToStation"},
		},
	},
	transit.DrivingAndPublicTransport: {
		field:   "drivingAndPublicTransport",
		message: func(s *schema) protoreflect.MessageDescriptor { return s.drivingPT },
		fields: []detailField{
			{key: transit.WalkingTimeToStation, field: "walkingTimeToStation"},
			{key: transit.DrivingTimeToStation, field: "drivingTimeToStation"},
			{key: transit.ParkingTime, field: "parkingTime", nonNegative: true},
		},
	},
}

// apply attaches the block only when at least one of its details is present.
// Absent details stay unset.
func (b detailBlock) apply(s *schema, t transit.Transport, transportation protoreflect.Message) error {
	var values []fieldValue
	for _, f := range b.fields {
		seconds, ok := t.Detail(f.key)
		if !ok {
			continue
		}
		wrapperDesc := s.positiveU32
		if f.nonNegative {
			wrapperDesc = s.nonNegativeU32
		}
		wrapper := dynamicpb.NewMessage(wrapperDesc)
		if err := setFields(wrapper, fieldValue{"value", protoreflect.ValueOfUint32(seconds)}); err != nil {
			return err
		}
		values = append(values, fieldValue{f.field, protoreflect.ValueOfMessage(wrapper)})
	}
	if len(values) == 0 {
		return nil
	}

	details := dynamicpb.NewMessage(b.message(s))
	if err := setFields(details, values...); err != nil {
		return err
	}
	return setFields(transportation, fieldValue{b.field, protoreflect.ValueOfMessage(details)})
}
