package transit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Details maps a detail key to a duration in seconds.
type Details map[DetailKey]uint32

// Transport is a resolved mode plus its validated details. The zero value is
// public transport without details.
type Transport struct {
	mode    Mode
	details Details
}

// Resolve resolves a bare mode identifier. No details are attached.
func Resolve(name string) (Transport, error) {
	m, err := ParseMode(name)
	if err != nil {
		return Transport{}, err
	}
	return Transport{mode: m}, nil
}

// ResolveWithDetails resolves a mode identifier and validates details against
// the keys that mode permits.
func ResolveWithDetails(name string, details Details) (Transport, error) {
	m, err := ParseMode(name)
	if err != nil {
		return Transport{}, err
	}
	if err := validateDetails(m, details); err != nil {
		return Transport{}, err
	}
	t := Transport{mode: m}
	if len(details) > 0 {
		t.details = maps.Clone(details)
	}
	return t, nil
}

// MustResolve is like Resolve but panics on an unknown identifier.
func MustResolve(name string) Transport {
	t, err := Resolve(name)
	if err != nil {
		panic(err)
	}
	return t
}

func validateDetails(m Mode, details Details) error {
	if len(details) == 0 {
		return nil
	}

	provided := sortedKeys(details)
	allowed := modes[m].allowed

	if len(allowed) == 0 {
		return invalid(ErrUnsupportedDetails,
			"Transport type '%s' doesn't support additional details, but %s provided", m, joinKeys(provided))
	}

	var unexpected []DetailKey
	for _, k := range provided {
		if !m.allows(k) {
			unexpected = append(unexpected, k)
		}
	}
	if len(unexpected) > 0 {
		allowedMsg := "no details"
		if len(allowed) > 0 {
			allowedMsg = joinKeys(allowed)
		}
		return invalid(ErrUnexpectedDetails,
			"Unexpected details for transport type '%s': %s. Allowed: %s", m, joinKeys(unexpected), allowedMsg)
	}

	for _, k := range provided {
		if positiveDetails[k] && details[k] == 0 {
			return invalid(ErrInvalidDetailValue, "Detail %s for transport type '%s' must be positive", k, m)
		}
	}
	return nil
}

func sortedKeys(details Details) []DetailKey {
	return slices.Sorted(maps.Keys(details))
}

func joinKeys(keys []DetailKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

func (t Transport) Mode() Mode { return t.mode }

// Details returns a copy of the attached details.
func (t Transport) Details() Details { return maps.Clone(t.details) }

// Detail returns a single detail value and whether it was provided.
func (t Transport) Detail(key DetailKey) (uint32, bool) {
	v, ok := t.details[key]
	return v, ok
}

// HasDetails reports whether any details are attached.
func (t Transport) HasDetails() bool { return len(t.details) > 0 }

func (t Transport) String() string { return t.mode.String() }

// MarshalJSON writes a bare identifier when no details are attached and an
// object with a "type" key otherwise.
func (t Transport) MarshalJSON() ([]byte, error) {
	if len(t.details) == 0 {
		return json.Marshal(t.mode.String())
	}
	obj := make(map[string]any, len(t.details)+1)
	obj["type"] = t.mode.String()
	for k, v := range t.details {
		obj[string(k)] = v
	}
	return json.Marshal(obj)
}

// UnmarshalJSON accepts either "pt" or {"type": "pt", "walking_time_to_station": 600}.
func (t *Transport) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		resolved, err := Resolve(name)
		if err != nil {
			return err
		}
		*t = resolved
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding transport: %w", err)
	}

	var name string
	if err := json.Unmarshal(raw["type"], &name); err != nil || name == "" {
		return invalid(ErrUnknownMode, "Transport type is missing")
	}
	delete(raw, "type")

	details := make(Details, len(raw))
	for k, v := range raw {
		var seconds uint32
		if err := json.Unmarshal(v, &seconds); err != nil {
			return invalid(ErrInvalidDetailValue, "Detail %s must be a non-negative integer of seconds", k)
		}
		details[DetailKey(k)] = seconds
	}

	resolved, err := ResolveWithDetails(name, details)
	if err != nil {
		return err
	}
	*t = resolved
	return nil
}
