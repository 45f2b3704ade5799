package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/skysar/sarplan/internal/geo"
	"github.com/skysar/sarplan/pkg/logger"
)

// Service runs the planning pipeline. It holds only configuration and a
// logger; every call to Plan is an independent pure computation, safe to
// invoke concurrently across scenarios.
type Service struct {
	tunables Tunables
	assets   []Asset
	logger   *logger.Logger
}

// NewService creates a planning service with the given tunables and default
// asset fleet.
func NewService(t Tunables, assets []Asset, log *logger.Logger) (*Service, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Service{
		tunables: t,
		assets:   assets,
		logger:   log.Named("planner"),
	}, nil
}

// Tunables returns the service's planning constants.
func (s *Service) Tunables() Tunables {
	return s.tunables
}

// Assets returns the configured default asset fleet.
func (s *Service) Assets() []Asset {
	out := make([]Asset, len(s.assets))
	copy(out, s.assets)
	return out
}

// Plan runs the full pipeline for one scenario: range estimate, drift
// displacement, probability grid, and per-asset coverage patterns. A failed
// run returns an error and no partial plan. Assets may be nil to use the
// configured fleet.
func (s *Service) Plan(in Input, assets []Asset) (*Plan, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if assets == nil {
		assets = s.assets
	}

	trueHeading := geo.NormalizeBearing(in.Kinematics.HeadingDeg)
	if in.Kinematics.MagneticHeading {
		at := in.Time
		if at.IsZero() {
			at = time.Now().UTC()
		}
		trueHeading = geo.MagneticToTrue(in.Kinematics.HeadingDeg, in.LastKnown, at)
	}

	est, err := EstimateRange(in.Kinematics, in.Fuel, in.LastKnown.AltitudeFt, s.tunables)
	if err != nil {
		return nil, err
	}

	drift, err := ApplyDrift(in.LastKnown, trueHeading, in.Weather, est, s.tunables)
	if err != nil {
		return nil, err
	}
	if drift.Clamped {
		s.logger.Warn("Wind displacement clamped to range cap",
			logger.Float64("wind_kt", in.Weather.WindSpeedKt),
			logger.Float64("max_range_km", est.MaxRangeKm),
			logger.Float64("drift_km", drift.DriftKm))
	}

	area := SearchArea{
		Center:   drift.Center,
		RadiusKm: SearchRadiusKm(est, s.tunables),
	}

	downwind := geo.NormalizeBearing(in.Weather.WindDirectionDeg + 180)
	grid, err := BuildGrid(area, downwind, s.tunables)
	if err != nil {
		return nil, err
	}

	patterns, sweepHours, err := PlanPatterns(grid, assets)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Planning run complete",
		logger.Float64("endurance_hours", est.EnduranceHours),
		logger.Float64("radius_km", area.RadiusKm),
		logger.Int("cells", len(grid.Cells)),
		logger.Int("assets", len(patterns)))

	return &Plan{
		Input:          in,
		TrueHeadingDeg: trueHeading,
		Range:          est,
		Projected:      drift.Projected,
		Area:           area,
		DriftKm:        drift.DriftKm,
		DriftClamped:   drift.Clamped,
		Grid:           grid,
		Patterns:       patterns,
		SweepHours:     sweepHours,
	}, nil
}

// validateInput defends against degenerate geometry. Range bounds are the
// caller's responsibility; NaN and negative magnitudes are not.
func validateInput(in Input) error {
	if !in.LastKnown.Valid() {
		return fmt.Errorf("%w: last known position %+v", ErrInvalidGeometry, in.LastKnown)
	}
	for name, v := range map[string]float64{
		"ground_speed":  in.Kinematics.GroundSpeedKmh,
		"heading":       in.Kinematics.HeadingDeg,
		"wind_speed":    in.Weather.WindSpeedKt,
		"wind_dir":      in.Weather.WindDirectionDeg,
		"visibility":    in.Weather.VisibilityKm,
		"precipitation": in.Weather.PrecipitationMmHr,
		"fuel":          in.Fuel.RemainingKg,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidGeometry, name)
		}
	}
	if in.Kinematics.GroundSpeedKmh < 0 {
		return fmt.Errorf("%w: negative ground speed %.1f km/h", ErrInvalidGeometry, in.Kinematics.GroundSpeedKmh)
	}
	if in.Weather.WindSpeedKt < 0 {
		return fmt.Errorf("%w: negative wind speed %.1f kt", ErrInvalidGeometry, in.Weather.WindSpeedKt)
	}
	return nil
}
