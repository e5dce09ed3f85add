package fastproto

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

// SchemaVersion selects the API generation of the fast endpoints. v2 has no
// many-to-one request and no result properties; v3 has both.
type SchemaVersion string

const (
	V2 SchemaVersion = "v2"
	V3 SchemaVersion = "v3"
)

const (
	requestsPackage  = "com.igeolise.traveltime.rabbitmq.requests"
	responsesPackage = "com.igeolise.traveltime.rabbitmq.responses"
)

// schema holds the resolved descriptors for one version.
type schema struct {
	request        protoreflect.MessageDescriptor
	oneToMany      protoreflect.MessageDescriptor
	manyToOne      protoreflect.MessageDescriptor
	coords         protoreflect.MessageDescriptor
	transportation protoreflect.MessageDescriptor
	ptDetails      protoreflect.MessageDescriptor
	drivingPT      protoreflect.MessageDescriptor
	positiveU32    protoreflect.MessageDescriptor
	nonNegativeU32 protoreflect.MessageDescriptor

	response   protoreflect.MessageDescriptor
	properties protoreflect.MessageDescriptor
	respError  protoreflect.MessageDescriptor
	errorType  protoreflect.EnumDescriptor
}

var loadSchemas = sync.OnceValues(func() (map[SchemaVersion]*schema, error) {
	out := make(map[SchemaVersion]*schema, 2)
	for _, v := range []SchemaVersion{V2, V3} {
		s, err := buildSchema(v)
		if err != nil {
			return nil, fmt.Errorf("building %s schema: %w", v, err)
		}
		out[v] = s
	}
	return out, nil
})

func schemaFor(v SchemaVersion) (*schema, error) {
	all, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	s, ok := all[v]
	if !ok {
		return nil, fmt.Errorf("unknown schema version %q", v)
	}
	return s, nil
}

func buildSchema(v SchemaVersion) (*schema, error) {
	reqFile, err := protodesc.NewFile(requestFileProto(v), new(protoregistry.Files))
	if err != nil {
		return nil, fmt.Errorf("request descriptors: %w", err)
	}
	respFile, err := protodesc.NewFile(responseFileProto(v), new(protoregistry.Files))
	if err != nil {
		return nil, fmt.Errorf("response descriptors: %w", err)
	}

	msgs := reqFile.Messages()
	request := msgs.ByName("TimeFilterFastRequest")
	response := respFile.Messages().ByName("TimeFilterFastResponse")

	return &schema{
		request:        request,
		oneToMany:      request.Messages().ByName("OneToMany"),
		manyToOne:      request.Messages().ByName("ManyToOne"),
		coords:         msgs.ByName("Coords"),
		transportation: msgs.ByName("Transportation"),
		ptDetails:      msgs.ByName("PublicTransportDetails"),
		drivingPT:      msgs.ByName("DrivingAndPublicTransportDetails"),
		positiveU32:    msgs.ByName("OptionalPositiveUInt32"),
		nonNegativeU32: msgs.ByName("OptionalNonNegativeUInt32"),
		response:       response,
		properties:     response.Messages().ByName("Properties"),
		respError:      response.Messages().ByName("Error"),
		errorType:      response.Enums().ByName("ErrorType"),
	}, nil
}

func field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type, typeName string) *descriptorpb.FieldDescriptorProto {
	f := &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
	if typeName != "" {
		f.TypeName = proto.String(typeName)
	}
	return f
}

func repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func inOneof(f *descriptorpb.FieldDescriptorProto, index int32) *descriptorpb.FieldDescriptorProto {
	f.OneofIndex = proto.Int32(index)
	return f
}

func enum(name string, values ...string) *descriptorpb.EnumDescriptorProto {
	e := &descriptorpb.EnumDescriptorProto{Name: proto.String(name)}
	for i, v := range values {
		e.Value = append(e.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(v),
			Number: proto.Int32(int32(i)),
		})
	}
	return e
}

const (
	typeMessage = descriptorpb.FieldDescriptorProto_TYPE_MESSAGE
	typeEnum    = descriptorpb.FieldDescriptorProto_TYPE_ENUM
	typeFloat   = descriptorpb.FieldDescriptorProto_TYPE_FLOAT
	typeUint32  = descriptorpb.FieldDescriptorProto_TYPE_UINT32
	typeSint32  = descriptorpb.FieldDescriptorProto_TYPE_SINT32
	typeInt32   = descriptorpb.FieldDescriptorProto_TYPE_INT32
)

func reqType(name string) string  { return "." + requestsPackage + "." + name }
func respType(name string) string { return "." + responsesPackage + "." + name }

// requestFileProto mirrors RequestsCommon.proto and TimeFilterFastRequest.proto
// merged into a single file.
func requestFileProto(v SchemaVersion) *descriptorpb.FileDescriptorProto {
	// Positional: the enum value number is the transport mode code.
	transportationType := enum("TransportationType",
		"PUBLIC_TRANSPORT",
		"DRIVING",
		"DRIVING_AND_PUBLIC_TRANSPORT",
		"DRIVING_AND_FERRY",
		"WALKING",
		"CYCLING",
		"CYCLING_AND_FERRY",
		"WALKING_AND_FERRY",
	)

	searchFields := func(locationField string) []*descriptorpb.FieldDescriptorProto {
		fields := []*descriptorpb.FieldDescriptorProto{
			field(locationField, 1, typeMessage, reqType("Coords")),
			repeated(field("locationDeltas", 2, typeSint32, "")),
			field("transportation", 3, typeMessage, reqType("Transportation")),
			field("arrivalTimePeriod", 4, typeEnum, reqType("TimePeriod")),
			field("travelTime", 5, typeSint32, ""),
		}
		if v == V3 {
			fields = append(fields,
				repeated(field("properties", 6, typeEnum, reqType("TimeFilterFastRequest.Property"))))
		}
		return fields
	}

	request := &descriptorpb.DescriptorProto{
		Name: proto.String("TimeFilterFastRequest"),
		NestedType: []*descriptorpb.DescriptorProto{
			{Name: proto.String("OneToMany"), Field: searchFields("departureLocation")},
		},
		Field: []*descriptorpb.FieldDescriptorProto{
			field("oneToManyRequest", 1, typeMessage, reqType("TimeFilterFastRequest.OneToMany")),
		},
	}
	if v == V3 {
		request.EnumType = []*descriptorpb.EnumDescriptorProto{enum("Property", "FARES", "DISTANCES")}
		request.NestedType = append(request.NestedType,
			&descriptorpb.DescriptorProto{Name: proto.String("ManyToOne"), Field: searchFields("arrivalLocation")})
		request.Field = append(request.Field,
			field("manyToOneRequest", 2, typeMessage, reqType("TimeFilterFastRequest.ManyToOne")))
	}

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(string(v) + "/TimeFilterFastRequest.proto"),
		Package: proto.String(requestsPackage),
		Syntax:  proto.String("proto3"),
		EnumType: []*descriptorpb.EnumDescriptorProto{
			transportationType,
			enum("TimePeriod", "WEEKDAY_MORNING"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Coords"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("lat", 1, typeFloat, ""),
					field("lng", 2, typeFloat, ""),
				},
			},
			{
				Name:  proto.String("OptionalPositiveUInt32"),
				Field: []*descriptorpb.FieldDescriptorProto{field("value", 1, typeUint32, "")},
			},
			{
				Name:  proto.String("OptionalNonNegativeUInt32"),
				Field: []*descriptorpb.FieldDescriptorProto{field("value", 1, typeUint32, "")},
			},
			{
				Name: proto.String("PublicTransportDetails"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("walkingTimeToStation", 1, typeMessage, reqType("OptionalPositiveUInt32")),
				},
			},
			{
				Name: proto.String("DrivingAndPublicTransportDetails"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("walkingTimeToStation", 1, typeMessage, reqType("OptionalPositiveUInt32")),
					field("drivingTimeToStation", 2, typeMessage, reqType("OptionalPositiveUInt32")),
					field("parkingTime", 3, typeMessage, reqType("OptionalNonNegativeUInt32")),
				},
			},
			{
				Name: proto.String("Transportation"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("type", 1, typeEnum, reqType("TransportationType")),
					inOneof(field("publicTransport", 2, typeMessage, reqType("PublicTransportDetails")), 0),
					inOneof(field("drivingAndPublicTransport", 3, typeMessage, reqType("DrivingAndPublicTransportDetails")), 0),
				},
				OneofDecl: []*descriptorpb.OneofDescriptorProto{
					{Name: proto.String("transportationDetails")},
				},
			},
			request,
		},
	}
}

// responseFileProto mirrors TimeFilterFastResponse.proto.
func responseFileProto(v SchemaVersion) *descriptorpb.FileDescriptorProto {
	props := []*descriptorpb.FieldDescriptorProto{
		repeated(field("travelTimes", 1, typeSint32, "")),
		repeated(field("monthlyFares", 2, typeInt32, "")),
	}
	if v == V3 {
		props = append(props, repeated(field("distances", 3, typeInt32, "")))
	}

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(string(v) + "/TimeFilterFastResponse.proto"),
		Package: proto.String(responsesPackage),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("TimeFilterFastResponse"),
				EnumType: []*descriptorpb.EnumDescriptorProto{
					enum("ErrorType",
						"UNKNOWN",
						"ONE_TO_MANY_MUST_NOT_BE_NULL",
						"SOURCE_NOT_IN_GEOMETRY",
						"UNRECOGNIZED_TRANSPORTATION_MODE",
						"SOURCE_OUT_OF_REACH",
						"INVALID_PROPERTIES",
						"TOO_MANY_LOCATIONS",
						"MANY_TO_ONE_MUST_NOT_BE_NULL",
					),
				},
				NestedType: []*descriptorpb.DescriptorProto{
					{Name: proto.String("Properties"), Field: props},
					{
						Name: proto.String("Error"),
						Field: []*descriptorpb.FieldDescriptorProto{
							field("type", 1, typeEnum, respType("TimeFilterFastResponse.ErrorType")),
						},
					},
				},
				Field: []*descriptorpb.FieldDescriptorProto{
					field("error", 1, typeMessage, respType("TimeFilterFastResponse.Error")),
					field("properties", 2, typeMessage, respType("TimeFilterFastResponse.Properties")),
				},
			},
		},
	}
}
