package traveltime

import (
	"errors"
	"fmt"

	"github.com/randytsao24/traveltime/internal/fastproto"
	"github.com/randytsao24/traveltime/internal/transit"
)

// DefaultErrorMessage is used when neither the caller nor the response body
// provides a message.
const DefaultErrorMessage = "Error while processing the request"

// Kind classifies an Error by where it originated.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindUnknownTransportMode
	KindUnsupportedDetailsForMode
	KindUnexpectedDetailKeys
	KindInvalidDetailValue
	KindInvalidQuery
	KindInvalidRequestType
	KindSerializationFailure
	KindHTTPStatusFailure
	KindTransportFailure
	KindDecodeFailure
)

var kindNames = [...]string{
	KindUnknown:                   "Unknown",
	KindUnknownTransportMode:      "UnknownTransportMode",
	KindUnsupportedDetailsForMode: "UnsupportedDetailsForMode",
	KindUnexpectedDetailKeys:      "UnexpectedDetailKeys",
	KindInvalidDetailValue:        "InvalidDetailValue",
	KindInvalidQuery:              "InvalidQuery",
	KindInvalidRequestType:        "InvalidRequestType",
	KindSerializationFailure:      "SerializationFailure",
	KindHTTPStatusFailure:         "HTTPStatusFailure",
	KindTransportFailure:          "TransportFailure",
	KindDecodeFailure:             "DecodeFailure",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error is returned by every Client method and every constructor in this
// package. Response is set for HTTP status failures; Cause is set when the
// failure wraps another error.
type Error struct {
	Kind     Kind
	Response *Response
	Cause    error
	message  string
}

// newError resolves the message as: message, then the body's description,
// then the cause, then DefaultErrorMessage.
func newError(kind Kind, resp *Response, cause error, message string) *Error {
	e := &Error{Kind: kind, Response: resp, Cause: cause, message: message}
	if e.message == "" {
		if d, ok := e.Description(); ok && d != "" {
			e.message = d
		} else if cause != nil {
			e.message = cause.Error()
		} else {
			e.message = DefaultErrorMessage
		}
	}
	return e
}

// wrapError turns a validation or encoding failure into an *Error.
func wrapError(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return newError(classify(err), nil, err, "")
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, transit.ErrUnknownMode):
		return KindUnknownTransportMode
	case errors.Is(err, transit.ErrUnsupportedDetails):
		return KindUnsupportedDetailsForMode
	case errors.Is(err, transit.ErrUnexpectedDetails):
		return KindUnexpectedDetailKeys
	case errors.Is(err, transit.ErrInvalidDetailValue):
		return KindInvalidDetailValue
	case errors.Is(err, fastproto.ErrInvalidRequestType):
		return KindInvalidRequestType
	case errors.Is(err, fastproto.ErrSerialization):
		return KindSerializationFailure
	case errors.Is(err, fastproto.ErrDecode):
		return KindDecodeFailure
	default:
		return KindUnknown
	}
}

func (e *Error) Error() string { return e.message }

func (e *Error) Unwrap() error { return e.Cause }

// IsKind reports whether err is of kind k. Errors that did not pass through
// this package, such as those from json.Unmarshal into a Transport, are
// classified by the failure they wrap.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	kind := classify(err)
	return kind != KindUnknown && kind == k
}

// Description is the body's "description" field.
func (e *Error) Description() (string, bool) {
	s, ok := e.bodyField("description").(string)
	return s, ok
}

// ErrorCode is the body's "error_code" field.
func (e *Error) ErrorCode() (int, bool) {
	switch v := e.bodyField("error_code").(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// AdditionalInfo is the body's "additional_info" field, typically a map of
// field names to messages.
func (e *Error) AdditionalInfo() (map[string]any, bool) {
	m, ok := e.bodyField("additional_info").(map[string]any)
	return m, ok
}

// DocumentationLink is the body's "documentation_link" field.
func (e *Error) DocumentationLink() (string, bool) {
	s, ok := e.bodyField("documentation_link").(string)
	return s, ok
}

func (e *Error) bodyField(name string) any {
	if e.Response == nil {
		return nil
	}
	body, ok := e.Response.Body.(map[string]any)
	if !ok {
		return nil
	}
	return body[name]
}
