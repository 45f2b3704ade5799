package planner

import (
	"errors"
	"testing"

	"github.com/skysar/sarplan/internal/geo"
)

func buildTestGrid(t *testing.T, radiusKm float64) Grid {
	t.Helper()
	grid, err := BuildGrid(SearchArea{
		Center:   geo.NewPosition(45.0, -75.0, 0),
		RadiusKm: radiusKm,
	}, 90, DefaultTunables())
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}
	return grid
}

func testFleet(n int) []Asset {
	fleet := make([]Asset, n)
	for i := range fleet {
		fleet[i] = Asset{Name: "Helo", SweepWidthKm: 1.0, SpeedKmh: 220}
	}
	return fleet
}

func TestPlanPatternsCoversEveryCell(t *testing.T) {
	grid := buildTestGrid(t, 6)
	patterns, _, err := PlanPatterns(grid, testFleet(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// With sweep width equal to cell size every cell gets exactly one
	// waypoint, and no cell is visited by two assets.
	seen := make(map[[2]int]int)
	for _, p := range patterns {
		for _, wp := range p.Waypoints {
			cell := nearestCell(grid, wp.Position)
			seen[[2]int{cell.Row, cell.Col}]++
		}
	}

	for _, c := range grid.Cells {
		key := [2]int{c.Row, c.Col}
		if seen[key] == 0 {
			t.Errorf("cell (%d,%d) never visited", c.Row, c.Col)
		}
		if seen[key] > 1 {
			t.Errorf("cell (%d,%d) visited %d times", c.Row, c.Col, seen[key])
		}
	}
}

func TestPlanPatternsWaypointIndexes(t *testing.T) {
	grid := buildTestGrid(t, 6)
	patterns, _, err := PlanPatterns(grid, testFleet(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range patterns {
		for i, wp := range p.Waypoints {
			if wp.Index != i {
				t.Fatalf("pattern %d waypoint %d has index %d", p.Asset, i, wp.Index)
			}
		}
	}
}

func TestPlanPatternsExtraAssetsUnassigned(t *testing.T) {
	// A 5 km radius with the minimum-size grid has few rows; a large fleet
	// cannot all get bands.
	tun := DefaultTunables()
	tun.CellSizeKm = 5
	grid, err := BuildGrid(SearchArea{
		Center:   geo.NewPosition(45.0, -75.0, 0),
		RadiusKm: 5,
	}, 0, tun)
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}

	patterns, _, err := PlanPatterns(grid, testFleet(8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 8 {
		t.Fatalf("got %d patterns, want 8", len(patterns))
	}

	unassigned := 0
	for _, p := range patterns {
		if p.Unassigned {
			if len(p.Waypoints) != 0 {
				t.Errorf("unassigned pattern %d has %d waypoints", p.Asset, len(p.Waypoints))
			}
			unassigned++
		}
	}
	if unassigned == 0 {
		t.Error("expected some unassigned assets for an oversize fleet")
	}
}

func TestPlanPatternsSweepTimeIsSlowestAsset(t *testing.T) {
	grid := buildTestGrid(t, 6)
	fleet := []Asset{
		{Name: "Helo", SweepWidthKm: 1.0, SpeedKmh: 220},
		{Name: "Drone", SweepWidthKm: 1.0, SpeedKmh: 40},
	}

	patterns, sweepHours, err := PlanPatterns(grid, fleet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var slowest float64
	for _, p := range patterns {
		hours := p.PathLengthKm / fleet[p.Asset].SpeedKmh
		if hours > slowest {
			slowest = hours
		}
	}
	if sweepHours != slowest {
		t.Errorf("sweepHours = %v, want slowest asset time %v", sweepHours, slowest)
	}
	if sweepHours <= 0 {
		t.Error("sweep time must be positive for a non-empty grid")
	}
}

func TestPlanPatternsWideSweepSkipsRows(t *testing.T) {
	grid := buildTestGrid(t, 6)

	narrow, _, err := PlanPatterns(grid, []Asset{{Name: "A", SweepWidthKm: 1.0, SpeedKmh: 200}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wide, _, err := PlanPatterns(grid, []Asset{{Name: "B", SweepWidthKm: 3.0, SpeedKmh: 200}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A 3 km sweep in a 1 km grid flies one pass per three rows
	if len(wide[0].Waypoints) >= len(narrow[0].Waypoints) {
		t.Errorf("wide sweep %d waypoints, narrow %d; wide should need fewer passes",
			len(wide[0].Waypoints), len(narrow[0].Waypoints))
	}
}

func TestPlanPatternsNoAssets(t *testing.T) {
	grid := buildTestGrid(t, 6)
	_, _, err := PlanPatterns(grid, nil)
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestPlanPatternsBadAsset(t *testing.T) {
	grid := buildTestGrid(t, 6)
	_, _, err := PlanPatterns(grid, []Asset{{Name: "X", SweepWidthKm: 0, SpeedKmh: 100}})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

// nearestCell finds the grid cell whose center is closest to the position.
func nearestCell(grid Grid, pos geo.Position) Cell {
	best := grid.Cells[0]
	bestDist := geo.Distance(pos, best.Center)
	for _, c := range grid.Cells[1:] {
		if d := geo.Distance(pos, c.Center); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
