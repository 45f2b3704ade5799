package geo

import (
	"time"

	"github.com/westphae/geomag/pkg/egm96"
	"github.com/westphae/geomag/pkg/wmm"
)

// MagneticVariation returns the magnetic declination at the given position and
// time in degrees (+East, -West), from the World Magnetic Model.
func MagneticVariation(pos Position, date time.Time) float64 {
	loc := egm96.NewLocationGeodetic(pos.Latitude, pos.Longitude, pos.AltitudeFt*FeetToMeters)

	mag, err := wmm.CalculateWMMMagneticField(loc, date)
	if err != nil {
		// Return 0 for safety if calculation fails
		return 0.0
	}

	return mag.D()
}

// MagneticToTrue converts a magnetic heading to a true heading at the given
// position and time.
func MagneticToTrue(magHeadingDeg float64, pos Position, date time.Time) float64 {
	return NormalizeBearing(magHeadingDeg + MagneticVariation(pos, date))
}
