// Package transit resolves transport modes and validates the optional
// timing details each mode accepts.
package transit

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownMode        = errors.New("unknown transport mode")
	ErrUnsupportedDetails = errors.New("transport mode does not support details")
	ErrUnexpectedDetails  = errors.New("unexpected transport details")
	ErrInvalidDetailValue = errors.New("invalid transport detail value")
)

// ValidationError carries a caller-facing message and wraps one of the
// sentinel errors above.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(kind error, format string, args ...any) error {
	return &ValidationError{Err: kind, Message: fmt.Sprintf(format, args...)}
}

// Mode is a transport mode. Its numeric value is the protocol code sent on
// the wire.
type Mode uint8

const (
	PublicTransport           Mode = 0
	Driving                   Mode = 1
	DrivingAndPublicTransport Mode = 2
	DrivingAndFerry           Mode = 3
	Walking                   Mode = 4
	Cycling                   Mode = 5
	CyclingAndFerry           Mode = 6
	WalkingAndFerry           Mode = 7

	modeCount = 8
)

// DetailKey names an optional timing detail attached to a transport mode.
type DetailKey string

const (
	WalkingTimeToStation DetailKey = "walking_time_to_station"
	DrivingTimeToStation DetailKey = "driving_time_to_station"
	ParkingTime          DetailKey = "parking_time"
)

// positiveDetails must be strictly positive when present; every other key
// accepts zero.
var positiveDetails = map[DetailKey]bool{
	WalkingTimeToStation: true,
	DrivingTimeToStation: true,
}

type modeInfo struct {
	name    string
	urlName string
	allowed []DetailKey
}

// modes is indexed by Mode. The fast endpoints serve cycling and driving+pt
// under the driving and pt paths respectively.
var modes = [modeCount]modeInfo{
	PublicTransport:           {name: "pt", urlName: "pt", allowed: []DetailKey{WalkingTimeToStation}},
	Driving:                   {name: "driving", urlName: "driving"},
	DrivingAndPublicTransport: {name: "driving+pt", urlName: "pt", allowed: []DetailKey{WalkingTimeToStation, DrivingTimeToStation, ParkingTime}},
	DrivingAndFerry:           {name: "driving+ferry", urlName: "driving+ferry"},
	Walking:                   {name: "walking", urlName: "walking"},
	Cycling:                   {name: "cycling", urlName: "driving"},
	CyclingAndFerry:           {name: "cycling+ferry", urlName: "cycling+ferry"},
	WalkingAndFerry:           {name: "walking+ferry", urlName: "walking+ferry"},
}

var modesByName = func() map[string]Mode {
	m := make(map[string]Mode, modeCount)
	for i, info := range modes {
		m[info.name] = Mode(i)
	}
	return m
}()

// ParseMode looks up a mode by its identifier, e.g. "driving+pt".
func ParseMode(name string) (Mode, error) {
	m, ok := modesByName[name]
	if !ok {
		return 0, invalid(ErrUnknownMode, "Unknown transport type '%s'", name)
	}
	return m, nil
}

// Modes returns every known mode in code order.
func Modes() []Mode {
	all := make([]Mode, modeCount)
	for i := range all {
		all[i] = Mode(i)
	}
	return all
}

func (m Mode) valid() bool { return m < modeCount }

// Code is the protocol enum value for the mode.
func (m Mode) Code() int32 { return int32(m) }

func (m Mode) String() string {
	if !m.valid() {
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
	return modes[m].name
}

// URLName is the path segment used by the fast endpoints.
func (m Mode) URLName() string {
	if !m.valid() {
		return ""
	}
	return modes[m].urlName
}

// AllowedDetails lists the detail keys the mode accepts.
func (m Mode) AllowedDetails() []DetailKey {
	if !m.valid() {
		return nil
	}
	return append([]DetailKey(nil), modes[m].allowed...)
}

func (m Mode) allows(key DetailKey) bool {
	for _, k := range modes[m].allowed {
		if k == key {
			return true
		}
	}
	return false
}
