// Package assess derives the operational picture from a completed planning
// run: how many search units an area needs, how long the search will take,
// and how risky the weather makes it. These are deterministic threshold
// lookups over core outputs, with every threshold held in configuration.
package assess

import (
	"math"

	"github.com/skysar/sarplan/internal/planner"
)

// ResourceRubric holds the area-per-unit thresholds and per-unit coverage
// rates used to size the search effort.
type ResourceRubric struct {
	HelicopterAreaKm2 float64 // one helicopter per this much area
	GroundTeamAreaKm2 float64
	DroneAreaKm2      float64

	MinHelicopters int
	MinGroundTeams int
	MinDrones      int

	HelicopterRateKm2Hr float64 // coverage rate per unit
	GroundTeamRateKm2Hr float64
	DroneRateKm2Hr      float64
}

// DefaultResourceRubric returns the standard sizing rubric.
func DefaultResourceRubric() ResourceRubric {
	return ResourceRubric{
		HelicopterAreaKm2:   100,
		GroundTeamAreaKm2:   50,
		DroneAreaKm2:        25,
		MinHelicopters:      1,
		MinGroundTeams:      2,
		MinDrones:           2,
		HelicopterRateKm2Hr: 30,
		GroundTeamRateKm2Hr: 5,
		DroneRateKm2Hr:      15,
	}
}

// SearchResources is the unit allocation for a search area.
type SearchResources struct {
	Helicopters    int     `json:"helicopters"`
	GroundTeams    int     `json:"ground_teams"`
	Drones         int     `json:"drones"`
	EstimatedHours float64 `json:"estimated_hours"`
}

// CalculateResources sizes the search effort from the area alone and
// estimates the time to cover it at the combined unit coverage rate.
func CalculateResources(area planner.SearchArea, r ResourceRubric) SearchResources {
	km2 := area.AreaKm2()

	res := SearchResources{
		Helicopters: atLeast(int(km2/r.HelicopterAreaKm2), r.MinHelicopters),
		GroundTeams: atLeast(int(km2/r.GroundTeamAreaKm2), r.MinGroundTeams),
		Drones:      atLeast(int(km2/r.DroneAreaKm2), r.MinDrones),
	}

	rate := float64(res.Helicopters)*r.HelicopterRateKm2Hr +
		float64(res.GroundTeams)*r.GroundTeamRateKm2Hr +
		float64(res.Drones)*r.DroneRateKm2Hr
	if rate > 0 {
		res.EstimatedHours = math.Round(km2/rate*10) / 10
	}
	return res
}

func atLeast(n, floor int) int {
	if n < floor {
		return floor
	}
	return n
}
