// Package location holds geographic points and the fixed-point coordinate
// encoding used by the fast endpoints.
package location

import "math"

// FixedPointScale is the factor applied to degree differences before rounding.
const FixedPointScale = 1e5

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// EncodeFixedPoint returns round((target - source) * 10^5).
// Halves round away from zero.
func EncodeFixedPoint(source, target float64) int32 {
	return int32(math.Round((target - source) * FixedPointScale))
}

// BuildDeltas encodes each point relative to anchor as a lat/lng pair and
// flattens the pairs in input order: [dLat0, dLng0, dLat1, dLng1, ...].
func BuildDeltas(anchor Point, others []Point) []int32 {
	deltas := make([]int32, 0, 2*len(others))
	for _, p := range others {
		deltas = append(deltas,
			EncodeFixedPoint(anchor.Lat, p.Lat),
			EncodeFixedPoint(anchor.Lng, p.Lng),
		)
	}
	return deltas
}
