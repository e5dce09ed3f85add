package fastproto

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

var ErrDecode = errors.New("decoding fast response")

// ErrorType is TimeFilterFastResponse.ErrorType.
type ErrorType int32

// ResultError is the application-level error the service reports inside an
// otherwise well-formed response.
type ResultError struct {
	Type ErrorType `json:"type"`
	Name string    `json:"name"`
}

// Result is a decoded TimeFilterFastResponse. Each slice is aligned with the
// locations of the request.
type Result struct {
	Error        *ResultError `json:"error,omitempty"`
	TravelTimes  []int32      `json:"travelTimes"`
	MonthlyFares []int32      `json:"monthlyFares,omitempty"`
	Distances    []int32      `json:"distances,omitempty"`
}

// Decode parses a response body produced by the v endpoints. An empty body
// is a valid, empty response.
func Decode(v SchemaVersion, data []byte) (*Result, error) {
	s, err := schemaFor(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	msg := dynamicpb.NewMessage(s.response)
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	result := &Result{TravelTimes: []int32{}}
	fields := s.response.Fields()

	if fd := fields.ByName("error"); msg.Has(fd) {
		e := msg.Get(fd).Message()
		typ := e.Get(s.respError.Fields().ByName("type")).Enum()
		result.Error = &ResultError{Type: ErrorType(typ), Name: enumName(s.errorType, typ)}
	}

	if fd := fields.ByName("properties"); msg.Has(fd) {
		props := msg.Get(fd).Message()
		pf := s.properties.Fields()
		if tt := int32List(props, pf.ByName("travelTimes")); tt != nil {
			result.TravelTimes = tt
		}
		result.MonthlyFares = int32List(props, pf.ByName("monthlyFares"))
		if dist := pf.ByName("distances"); dist != nil {
			result.Distances = int32List(props, dist)
		}
	}
	return result, nil
}

// EncodeResult serializes r with the v response schema. It is the inverse of
// Decode and serves stand-in servers.
func EncodeResult(v SchemaVersion, r *Result) ([]byte, error) {
	s, err := schemaFor(v)
	if err != nil {
		return nil, err
	}

	msg := dynamicpb.NewMessage(s.response)
	if r.Error != nil {
		e := dynamicpb.NewMessage(s.respError)
		if err := setFields(e, fieldValue{"type", protoreflect.ValueOfEnum(protoreflect.EnumNumber(r.Error.Type))}); err != nil {
			return nil, err
		}
		if err := setFields(msg, fieldValue{"error", protoreflect.ValueOfMessage(e)}); err != nil {
			return nil, err
		}
	}

	if len(r.TravelTimes) > 0 || len(r.MonthlyFares) > 0 || len(r.Distances) > 0 {
		props := dynamicpb.NewMessage(s.properties)
		if err := appendInt32s(props, "travelTimes", r.TravelTimes); err != nil {
			return nil, err
		}
		if err := appendInt32s(props, "monthlyFares", r.MonthlyFares); err != nil {
			return nil, err
		}
		if len(r.Distances) > 0 {
			if err := appendInt32s(props, "distances", r.Distances); err != nil {
				return nil, err
			}
		}
		if err := setFields(msg, fieldValue{"properties", protoreflect.ValueOfMessage(props)}); err != nil {
			return nil, err
		}
	}

	return proto.MarshalOptions{Deterministic: true}.Marshal(msg)
}

func int32List(m protoreflect.Message, fd protoreflect.FieldDescriptor) []int32 {
	list := m.Get(fd).List()
	if list.Len() == 0 {
		return nil
	}
	out := make([]int32, list.Len())
	for i := range out {
		out[i] = int32(list.Get(i).Int())
	}
	return out
}

func enumName(ed protoreflect.EnumDescriptor, n protoreflect.EnumNumber) string {
	if v := ed.Values().ByNumber(n); v != nil {
		return string(v.Name())
	}
	return fmt.Sprintf("ErrorType(%d)", n)
}
