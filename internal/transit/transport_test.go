package transit

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveModeTable(t *testing.T) {
	cases := []struct {
		name    string
		code    int32
		urlName string
	}{
		{"pt", 0, "pt"},
		{"driving", 1, "driving"},
		{"driving+pt", 2, "pt"},
		{"driving+ferry", 3, "driving+ferry"},
		{"walking", 4, "walking"},
		{"cycling", 5, "driving"},
		{"cycling+ferry", 6, "cycling+ferry"},
		{"walking+ferry", 7, "walking+ferry"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr, err := Resolve(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.code, tr.Mode().Code())
			assert.Equal(t, tc.urlName, tr.Mode().URLName())
			assert.Equal(t, tc.name, tr.String())
			assert.False(t, tr.HasDetails())
		})
	}
}

func TestModesCoverTable(t *testing.T) {
	for _, m := range Modes() {
		assert.NotEmpty(t, m.String())
		assert.NotEmpty(t, m.URLName())

		parsed, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
}

func TestResolveUnknownMode(t *testing.T) {
	for _, name := range []string{"", "flying", "PT", "driving+walking"} {
		_, err := Resolve(name)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownMode), "mode %q", name)
	}

	_, err := ResolveWithDetails("teleport", Details{ParkingTime: 1})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestResolveWithDetails(t *testing.T) {
	tr, err := ResolveWithDetails("pt", Details{WalkingTimeToStation: 600})
	require.NoError(t, err)

	v, ok := tr.Detail(WalkingTimeToStation)
	assert.True(t, ok)
	assert.Equal(t, uint32(600), v)
	assert.Equal(t, Details{WalkingTimeToStation: 600}, tr.Details())
}

func TestResolveWithEmptyDetailsSkipsValidation(t *testing.T) {
	tr, err := ResolveWithDetails("driving+ferry", Details{})
	require.NoError(t, err)
	assert.False(t, tr.HasDetails())
}

func TestResolveRejectsUnexpectedDetail(t *testing.T) {
	_, err := ResolveWithDetails("pt", Details{ParkingTime: 300})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedDetails)
	assert.EqualError(t, err, "Unexpected details for transport type 'pt': parking_time. Allowed: walking_time_to_station")
}

func TestResolveRejectsDetailsForPlainMode(t *testing.T) {
	_, err := ResolveWithDetails("driving+ferry", Details{WalkingTimeToStation: 600})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedDetails)
	assert.EqualError(t, err, "Transport type 'driving+ferry' doesn't support additional details, but walking_time_to_station provided")
}

func TestResolveDrivingPublicTransportAllDetails(t *testing.T) {
	details := Details{
		WalkingTimeToStation: 600,
		DrivingTimeToStation: 1200,
		ParkingTime:          300,
	}
	tr, err := ResolveWithDetails("driving+pt", details)
	require.NoError(t, err)
	assert.Equal(t, details, tr.Details())
}

func TestResolvePositiveDetails(t *testing.T) {
	_, err := ResolveWithDetails("driving+pt", Details{DrivingTimeToStation: 0})
	assert.ErrorIs(t, err, ErrInvalidDetailValue)

	tr, err := ResolveWithDetails("driving+pt", Details{ParkingTime: 0})
	require.NoError(t, err)
	v, ok := tr.Detail(ParkingTime)
	assert.True(t, ok)
	assert.Zero(t, v)
}

func TestResolveCopiesDetails(t *testing.T) {
	details := Details{WalkingTimeToStation: 600}
	tr, err := ResolveWithDetails("pt", details)
	require.NoError(t, err)

	details[WalkingTimeToStation] = 1
	got := tr.Details()
	got[WalkingTimeToStation] = 2

	v, _ := tr.Detail(WalkingTimeToStation)
	assert.Equal(t, uint32(600), v)
}

func TestTransportJSON(t *testing.T) {
	var plain Transport
	require.NoError(t, json.Unmarshal([]byte(`"walking"`), &plain))
	assert.Equal(t, Walking, plain.Mode())

	var detailed Transport
	require.NoError(t, json.Unmarshal([]byte(`{"type":"driving+pt","parking_time":0,"walking_time_to_station":300}`), &detailed))
	assert.Equal(t, DrivingAndPublicTransport, detailed.Mode())
	assert.Equal(t, Details{ParkingTime: 0, WalkingTimeToStation: 300}, detailed.Details())

	out, err := json.Marshal(detailed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"driving+pt","parking_time":0,"walking_time_to_station":300}`, string(out))

	out, err = json.Marshal(plain)
	require.NoError(t, err)
	assert.Equal(t, `"walking"`, string(out))
}

func TestTransportJSONErrors(t *testing.T) {
	var tr Transport
	assert.ErrorIs(t, json.Unmarshal([]byte(`"boat"`), &tr), ErrUnknownMode)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"parking_time":1}`), &tr), ErrUnknownMode)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"type":"pt","walking_time_to_station":-5}`), &tr), ErrInvalidDetailValue)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"type":"pt","parking_time":5}`), &tr), ErrUnexpectedDetails)
}
