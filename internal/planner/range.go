package planner

import (
	"fmt"
	"math"
)

// minutesPerHour for vertical speed conversion (ft/min -> ft/h)
const minutesPerHour = 60.0

// EstimateRange converts remaining fuel, ground speed, and vertical speed into
// the aircraft's maximum remaining endurance and range.
//
// Endurance is fuel mass over the configured burn rate. When the aircraft was
// descending at last contact and the descent reaches ground level before the
// fuel runs out, the endurance is capped at the time to ground contact
// instead. Zero or negative fuel yields zero endurance; the caller applies the
// minimum-radius floor so the resulting area is never degenerate.
func EstimateRange(k Kinematics, fuel FuelState, altFt float64, t Tunables) (RangeEstimate, error) {
	if t.BurnRateKgPerHour <= 0 {
		return RangeEstimate{}, fmt.Errorf("%w: burn rate must be positive, got %.3f", ErrConfiguration, t.BurnRateKgPerHour)
	}
	if math.IsNaN(k.GroundSpeedKmh) || math.IsNaN(k.VerticalSpeedFpm) || math.IsNaN(fuel.RemainingKg) {
		return RangeEstimate{}, fmt.Errorf("%w: NaN kinematics or fuel input", ErrInvalidGeometry)
	}

	est := RangeEstimate{FuelLimited: true}

	if fuel.RemainingKg > 0 {
		est.EnduranceHours = fuel.RemainingKg / t.BurnRateKgPerHour
	}

	// A forced-landing descent hits the ground at altFt / descent rate; if
	// that happens before fuel exhaustion, it bounds the endurance instead.
	// Routine shallow descents do not.
	if k.VerticalSpeedFpm <= -t.ForcedDescentFpm && altFt > 0 {
		descentFtPerHour := -k.VerticalSpeedFpm * minutesPerHour
		timeToImpact := altFt / descentFtPerHour
		if timeToImpact < est.EnduranceHours || est.EnduranceHours == 0 {
			est.EnduranceHours = timeToImpact
			est.FuelLimited = false
		}
	}

	est.MaxRangeKm = k.GroundSpeedKmh * est.EnduranceHours
	return est, nil
}

// SearchRadiusKm derives the search radius from a range estimate: the
// configured uncertainty fraction of the maximum range, floored at the
// minimum radius.
func SearchRadiusKm(est RangeEstimate, t Tunables) float64 {
	return math.Max(est.MaxRangeKm*t.UncertaintyFraction, t.MinRadiusKm)
}
