// Package planner implements the probabilistic search-area pipeline: maximum
// range from fuel and kinematics, wind-drift displacement of the projected
// position, a probability-weighted grid over the resulting area, and a
// serpentine coverage pattern per search asset.
//
// Every planning run is a pure function over immutable inputs; nothing in this
// package retains state between calls.
package planner

import (
	"math"
	"time"

	"github.com/skysar/sarplan/internal/geo"
)

// Kinematics describes the aircraft's instantaneous motion at last contact.
type Kinematics struct {
	GroundSpeedKmh   float64 `json:"ground_speed_kmh"`
	VerticalSpeedFpm float64 `json:"vertical_speed_fpm"` // signed, negative = descending
	HeadingDeg       float64 `json:"heading_deg"`        // [0,360)
	MagneticHeading  bool    `json:"magnetic_heading,omitempty"`
}

// WeatherConditions is an immutable weather snapshot at last contact.
// Wind direction is the direction the wind blows FROM.
type WeatherConditions struct {
	WindSpeedKt       float64 `json:"wind_speed_kt"`
	WindDirectionDeg  float64 `json:"wind_direction_deg"`
	VisibilityKm      float64 `json:"visibility_km"`
	PrecipitationMmHr float64 `json:"precipitation_mm_hr"`
}

// FuelState is the remaining fuel mass at last contact.
type FuelState struct {
	RemainingKg float64 `json:"remaining_kg"`
}

// Input is the validated input to a planning run.
type Input struct {
	LastKnown  geo.Position      `json:"last_known"`
	Kinematics Kinematics        `json:"kinematics"`
	Weather    WeatherConditions `json:"weather"`
	Fuel       FuelState         `json:"fuel"`
	Time       time.Time         `json:"time,omitempty"` // time of last contact, for declination
}

// SearchArea is the probable crash region: a circle around the drift-adjusted
// center. It is derived once per run and never mutated.
type SearchArea struct {
	Center   geo.Position `json:"center"`
	RadiusKm float64      `json:"radius_km"`
}

// AreaKm2 returns the area of the search circle in square kilometres.
func (a SearchArea) AreaKm2() float64 {
	return math.Pi * a.RadiusKm * a.RadiusKm
}

// RangeEstimate is the output of the range estimator.
type RangeEstimate struct {
	EnduranceHours float64 `json:"endurance_hours"` // time to fuel exhaustion or ground contact
	MaxRangeKm     float64 `json:"max_range_km"`
	FuelLimited    bool    `json:"fuel_limited"` // false when descent reaches ground before exhaustion
}

// Cell is one probability cell of the grid. Weight is a relative likelihood;
// cells are comparable but do not sum to 1.
type Cell struct {
	Center      geo.Position `json:"center"`
	Row         int          `json:"row"`
	Col         int          `json:"col"`
	Weight      float64      `json:"weight"`
	HalfWidthKm float64      `json:"half_width_km"`
}

// Grid is the discretized probability surface over a search area. Cells are
// stored row-major; ordering is stable for deterministic comparison.
type Grid struct {
	Area            SearchArea `json:"area"`
	Cells           []Cell     `json:"cells"`
	Rows            int        `json:"rows"`
	Cols            int        `json:"cols"`
	CellSizeKm      float64    `json:"cell_size_km"`
	DownwindBearing float64    `json:"downwind_bearing_deg"`
}

// Waypoint is a position with a 0-based traversal index.
type Waypoint struct {
	Position geo.Position `json:"position"`
	Index    int          `json:"index"`
}

// Pattern is the ordered waypoint sequence assigned to one search asset.
// An asset with no usable sub-region has an empty waypoint list and is
// reported as unassigned, not as an error.
type Pattern struct {
	Asset        int        `json:"asset"`
	Waypoints    []Waypoint `json:"waypoints"`
	PathLengthKm float64    `json:"path_length_km"`
	Unassigned   bool       `json:"unassigned,omitempty"`
}

// Plan is the complete result of one planning run.
type Plan struct {
	Input          Input         `json:"input"`
	TrueHeadingDeg float64       `json:"true_heading_deg"`
	Range          RangeEstimate `json:"range"`
	Projected      geo.Position  `json:"projected"` // naive dead-reckoned position
	Area           SearchArea    `json:"area"`
	DriftKm        float64       `json:"drift_km"`
	DriftClamped   bool          `json:"drift_clamped,omitempty"` // wind displacement hit the range cap
	Grid           Grid          `json:"grid"`
	Patterns       []Pattern     `json:"patterns"`
	SweepHours     float64       `json:"sweep_hours"` // total path length / asset speed
}
