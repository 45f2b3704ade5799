package planner

import (
	"fmt"
	"math"

	"github.com/skysar/sarplan/internal/geo"
)

// DriftResult is the drift-adjusted search center and how it was reached.
type DriftResult struct {
	Projected geo.Position // dead-reckoned position along the last heading
	Center    geo.Position // Projected displaced downwind
	DriftKm   float64
	Clamped   bool // wind displacement hit the range cap
}

// ApplyDrift projects the last known position along the true heading for the
// estimated endurance, then displaces it downwind by the wind travel over the
// same period. Both steps are sequential geodesic projections rather than
// flat-plane vector addition, so the result stays valid away from the
// equator.
//
// The wind displacement is capped at DriftCapFraction of the maximum range:
// however strong the reported wind, the search center cannot leave the
// aircraft's physically reachable envelope. A clamped result is flagged, not
// fatal, since it usually indicates inconsistent wind and fuel inputs.
func ApplyDrift(lastKnown geo.Position, trueHeadingDeg float64, wx WeatherConditions, est RangeEstimate, t Tunables) (DriftResult, error) {
	if !lastKnown.Valid() {
		return DriftResult{}, fmt.Errorf("%w: last known position %+v", ErrInvalidGeometry, lastKnown)
	}
	if math.IsNaN(wx.WindSpeedKt) || math.IsNaN(wx.WindDirectionDeg) || wx.WindSpeedKt < 0 {
		return DriftResult{}, fmt.Errorf("%w: wind %.1f kt from %.1f deg", ErrInvalidGeometry, wx.WindSpeedKt, wx.WindDirectionDeg)
	}

	res := DriftResult{
		Projected: geo.Destination(lastKnown, trueHeadingDeg, est.MaxRangeKm),
	}

	// Wind direction is "from"; debris drifts along the reciprocal.
	downwind := geo.NormalizeBearing(wx.WindDirectionDeg + 180)
	driftKm := wx.WindSpeedKt * geo.KnotsToKmh * est.EnduranceHours

	if maxDrift := est.MaxRangeKm * t.DriftCapFraction; driftKm > maxDrift {
		driftKm = maxDrift
		res.Clamped = true
	}

	res.DriftKm = driftKm
	res.Center = geo.Destination(res.Projected, downwind, driftKm)
	return res, nil
}
