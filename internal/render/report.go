package render

import (
	"fmt"
	"strings"

	"github.com/skysar/sarplan/internal/assess"
	"github.com/skysar/sarplan/internal/planner"
)

// Report formats a plan and its assessment as the plain-text SAR briefing
// printed by the CLI and served by the report endpoint.
func Report(plan *planner.Plan, res assess.SearchResources, risk assess.RiskAssessment) string {
	var b strings.Builder

	b.WriteString("=== Search Results ===\n")
	b.WriteString("Search Center Position:\n")
	fmt.Fprintf(&b, "  Latitude:  %.4f°\n", plan.Area.Center.Latitude)
	fmt.Fprintf(&b, "  Longitude: %.4f°\n", plan.Area.Center.Longitude)
	fmt.Fprintf(&b, "Search Radius: %.2f km\n", plan.Area.RadiusKm)
	fmt.Fprintf(&b, "Endurance Estimate: %.2f hours", plan.Range.EnduranceHours)
	if !plan.Range.FuelLimited {
		b.WriteString(" (descent-limited)")
	}
	b.WriteString("\n")
	if plan.DriftClamped {
		b.WriteString("Note: wind drift clamped to reachable envelope; check wind and fuel inputs\n")
	}

	fmt.Fprintf(&b, "\nSearch Risk Level: %s\n", risk.Level)
	fmt.Fprintf(&b, "Factors: %s\n", strings.Join(risk.Factors, ", "))

	b.WriteString("\nRequired Resources:\n")
	fmt.Fprintf(&b, "  Helicopters: %d\n", res.Helicopters)
	fmt.Fprintf(&b, "  Ground Teams: %d\n", res.GroundTeams)
	fmt.Fprintf(&b, "  Drones: %d\n", res.Drones)
	fmt.Fprintf(&b, "  Estimated Search Time: %.1f hours\n", res.EstimatedHours)

	assigned := 0
	waypoints := 0
	for _, p := range plan.Patterns {
		if !p.Unassigned {
			assigned++
		}
		waypoints += len(p.Waypoints)
	}
	b.WriteString("\nSearch Pattern Generated:\n")
	fmt.Fprintf(&b, "  Assets Assigned: %d of %d\n", assigned, len(plan.Patterns))
	fmt.Fprintf(&b, "  Number of Waypoints: %d\n", waypoints)
	fmt.Fprintf(&b, "  Sweep Time: %.1f hours\n", plan.SweepHours)

	return b.String()
}
