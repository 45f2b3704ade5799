package planner

import (
	"errors"
	"math"
	"testing"

	"github.com/skysar/sarplan/internal/geo"
)

func TestApplyDriftZeroWind(t *testing.T) {
	tun := DefaultTunables()
	last := geo.NewPosition(45.0, -75.0, 8000)
	est := RangeEstimate{EnduranceHours: 0.5, MaxRangeKm: 150}

	res, err := ApplyDrift(last, 90, WeatherConditions{}, est, tun)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.DriftKm != 0 {
		t.Errorf("DriftKm = %v, want 0", res.DriftKm)
	}
	if res.Clamped {
		t.Error("zero wind must not clamp")
	}
	// With no wind the center is exactly the projected position
	if geo.Distance(res.Projected, res.Center) > 1e-9 {
		t.Errorf("center drifted without wind: %v km", geo.Distance(res.Projected, res.Center))
	}
	// And the projected position is max range along the heading
	if d := geo.Distance(last, res.Projected); math.Abs(d-150) > 0.01 {
		t.Errorf("projection distance = %v, want 150", d)
	}
}

func TestApplyDriftDownwindDisplacement(t *testing.T) {
	tun := DefaultTunables()
	last := geo.NewPosition(45.0, -75.0, 8000)
	est := RangeEstimate{EnduranceHours: 1.0, MaxRangeKm: 300}

	// 20 kt from the west for one hour: 37.04 km displacement toward the east
	wx := WeatherConditions{WindSpeedKt: 20, WindDirectionDeg: 270}
	res, err := ApplyDrift(last, 0, wx, est, tun)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantDrift := 20 * geo.KnotsToKmh
	if math.Abs(res.DriftKm-wantDrift) > 1e-9 {
		t.Errorf("DriftKm = %v, want %v", res.DriftKm, wantDrift)
	}
	if res.Clamped {
		t.Error("moderate wind must not clamp")
	}

	b := geo.Bearing(res.Projected, res.Center)
	if math.Abs(b-90) > 1.0 {
		t.Errorf("drift bearing = %v, want about 90 (downwind of a west wind)", b)
	}
}

func TestApplyDriftClampedAtCap(t *testing.T) {
	tun := DefaultTunables()
	last := geo.NewPosition(45.0, -75.0, 8000)
	est := RangeEstimate{EnduranceHours: 1.0, MaxRangeKm: 100}

	// 200 kt "wind" would displace 370 km; the cap holds it to half the range
	wx := WeatherConditions{WindSpeedKt: 200, WindDirectionDeg: 180}
	res, err := ApplyDrift(last, 0, wx, est, tun)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Clamped {
		t.Error("expected clamped drift")
	}
	if math.Abs(res.DriftKm-50) > 1e-9 {
		t.Errorf("DriftKm = %v, want cap 50", res.DriftKm)
	}
}

func TestApplyDriftInvalidInputs(t *testing.T) {
	tun := DefaultTunables()
	est := RangeEstimate{EnduranceHours: 1.0, MaxRangeKm: 100}

	tests := []struct {
		name string
		pos  geo.Position
		wx   WeatherConditions
	}{
		{"bad position", geo.Position{Latitude: 95}, WeatherConditions{}},
		{"negative wind", geo.NewPosition(45, -75, 0), WeatherConditions{WindSpeedKt: -5}},
		{"nan wind dir", geo.NewPosition(45, -75, 0), WeatherConditions{WindDirectionDeg: math.NaN()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyDrift(tt.pos, 0, tt.wx, est, tun)
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("expected ErrInvalidGeometry, got %v", err)
			}
		})
	}
}
