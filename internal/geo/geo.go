// Package geo provides the spherical-earth coordinate primitives used by the
// search planner: great-circle distance, forward geodesic projection, and
// initial bearing. All distances are kilometres, all angles degrees.
package geo

import "math"

// Constants
const (
	EarthRadiusKm = 6371.0   // Mean Earth radius
	KnotsToKmh    = 1.852    // Conversion factor from knots to km/h
	FeetToMeters  = 0.3048   // Conversion factor from feet to metres
	NMToKm        = 1.852    // Conversion factor from nautical miles to km
	degToRad      = math.Pi / 180
	radToDeg      = 180 / math.Pi
)

// Position is an immutable geographic point.
// Latitude is in [-90,90], longitude in [-180,180), altitude in feet.
type Position struct {
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lon"`
	AltitudeFt float64 `json:"alt_ft"`
}

// NewPosition returns a Position with the longitude normalized into [-180,180).
func NewPosition(latDeg, lonDeg, altFt float64) Position {
	return Position{
		Latitude:   latDeg,
		Longitude:  NormalizeLon(lonDeg),
		AltitudeFt: altFt,
	}
}

// Valid reports whether the position holds finite, in-range coordinates.
func (p Position) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) ||
		math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) ||
		math.IsNaN(p.AltitudeFt) || math.IsInf(p.AltitudeFt, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90
}

// NormalizeLon wraps a longitude into [-180,180).
func NormalizeLon(lonDeg float64) float64 {
	lon := math.Mod(lonDeg+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// NormalizeBearing wraps a bearing into [0,360).
func NormalizeBearing(deg float64) float64 {
	b := math.Mod(deg, 360)
	if b < 0 {
		b += 360
	}
	return b
}

// Distance returns the great-circle distance between two positions in km,
// using the haversine formula on the mean-radius sphere. Altitude is ignored.
func Distance(a, b Position) float64 {
	lat1 := a.Latitude * degToRad
	lat2 := b.Latitude * degToRad
	dLat := (b.Latitude - a.Latitude) * degToRad
	dLon := NormalizeLon(b.Longitude-a.Longitude) * degToRad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Bearing returns the initial bearing from a to b in degrees [0,360).
// Coincident points have no defined direction; 0 is returned as a safe default.
func Bearing(a, b Position) float64 {
	lat1 := a.Latitude * degToRad
	lat2 := b.Latitude * degToRad
	dLon := NormalizeLon(b.Longitude-a.Longitude) * degToRad

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	if y == 0 && x == 0 {
		return 0
	}
	return NormalizeBearing(math.Atan2(y, x) * radToDeg)
}

// Destination returns the position reached by travelling distanceKm from
// origin along the given initial bearing. Altitude carries over unchanged.
func Destination(origin Position, bearingDeg, distanceKm float64) Position {
	lat1 := origin.Latitude * degToRad
	lon1 := origin.Longitude * degToRad
	brg := bearingDeg * degToRad
	ratio := distanceKm / EarthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ratio) +
		math.Cos(lat1)*math.Sin(ratio)*math.Cos(brg))
	lon2 := lon1 + math.Atan2(
		math.Sin(brg)*math.Sin(ratio)*math.Cos(lat1),
		math.Cos(ratio)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Position{
		Latitude:   lat2 * radToDeg,
		Longitude:  NormalizeLon(lon2 * radToDeg),
		AltitudeFt: origin.AltitudeFt,
	}
}
