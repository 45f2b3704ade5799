package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/skysar/sarplan/internal/assess"
	"github.com/skysar/sarplan/internal/geo"
	"github.com/skysar/sarplan/internal/planner"
	"github.com/skysar/sarplan/pkg/logger"
)

func buildTestPlan(t *testing.T) *planner.Plan {
	t.Helper()
	svc, err := planner.NewService(planner.DefaultTunables(), []planner.Asset{
		{Name: "Helo 1", SweepWidthKm: 1.0, SpeedKmh: 220},
		{Name: "Drone 1", SweepWidthKm: 0.5, SpeedKmh: 80},
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	plan, err := svc.Plan(planner.Input{
		LastKnown: geo.NewPosition(45.0, -75.0, 10000),
		Kinematics: planner.Kinematics{
			GroundSpeedKmh: 300,
			HeadingDeg:     0,
		},
		Weather: planner.WeatherConditions{
			WindSpeedKt:      20,
			WindDirectionDeg: 270,
			VisibilityKm:     10,
		},
		Fuel: planner.FuelState{RemainingKg: 24},
	}, nil)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	return plan
}

func TestGeoJSONFeatures(t *testing.T) {
	plan := buildTestPlan(t)
	fc := GeoJSON(plan)

	if fc.Type != "FeatureCollection" {
		t.Errorf("Type = %q, want FeatureCollection", fc.Type)
	}

	kinds := make(map[string]int)
	for _, f := range fc.Features {
		if f.Type != "Feature" {
			t.Errorf("feature type %q, want Feature", f.Type)
		}
		kind, _ := f.Properties["kind"].(string)
		kinds[kind]++
	}

	for _, required := range []string{"last_known", "search_center", "drift_track", "search_area"} {
		if kinds[required] != 1 {
			t.Errorf("kind %q appears %d times, want 1", required, kinds[required])
		}
	}
	if kinds["search_pattern"] == 0 {
		t.Error("no search_pattern features")
	}
	if kinds["probability_cell"] != len(plan.Grid.Cells) {
		t.Errorf("%d probability_cell features, want %d", kinds["probability_cell"], len(plan.Grid.Cells))
	}
}

func TestGeoJSONCoordinateOrder(t *testing.T) {
	plan := buildTestPlan(t)
	fc := GeoJSON(plan)

	for _, f := range fc.Features {
		if f.Properties["kind"] != "last_known" {
			continue
		}
		coords, ok := f.Geometry.Coordinates.([]float64)
		if !ok {
			t.Fatalf("point coordinates have type %T", f.Geometry.Coordinates)
		}
		// GeoJSON is [lon, lat]
		if coords[0] != plan.Input.LastKnown.Longitude || coords[1] != plan.Input.LastKnown.Latitude {
			t.Errorf("coordinates = %v, want [lon lat] of last known position", coords)
		}
	}
}

func TestGeoJSONCircleClosed(t *testing.T) {
	plan := buildTestPlan(t)
	fc := GeoJSON(plan)

	for _, f := range fc.Features {
		if f.Properties["kind"] != "search_area" {
			continue
		}
		rings, ok := f.Geometry.Coordinates.([][][]float64)
		if !ok {
			t.Fatalf("polygon coordinates have type %T", f.Geometry.Coordinates)
		}
		ring := rings[0]
		first, last := ring[0], ring[len(ring)-1]
		if first[0] != last[0] || first[1] != last[1] {
			t.Errorf("polygon ring not closed: %v vs %v", first, last)
		}
	}
}

func TestHeatmapPNGDecodes(t *testing.T) {
	plan := buildTestPlan(t)

	data, err := HeatmapPNG(plan.Grid)
	if err != nil {
		t.Fatalf("HeatmapPNG failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != plan.Grid.Cols*pixelsPerCell || bounds.Dy() != plan.Grid.Rows*pixelsPerCell {
		t.Errorf("image %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(),
			plan.Grid.Cols*pixelsPerCell, plan.Grid.Rows*pixelsPerCell)
	}
}

func TestHeatmapPNGEmptyGrid(t *testing.T) {
	if _, err := HeatmapPNG(planner.Grid{}); err == nil {
		t.Error("expected error for empty grid")
	}
}

func TestReportContents(t *testing.T) {
	plan := buildTestPlan(t)
	res := assess.CalculateResources(plan.Area, assess.DefaultResourceRubric())
	risk := assess.AssessRisk(plan.Input.Weather, assess.DefaultRiskRubric())

	report := Report(plan, res, risk)

	for _, want := range []string{
		"=== Search Results ===",
		"Search Center Position:",
		"Search Radius: 30.00 km",
		"Endurance Estimate: 0.50 hours",
		"Search Risk Level: LOW",
		"Good weather conditions",
		"Helicopters:",
		"Number of Waypoints:",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestReportDescentLimitedNote(t *testing.T) {
	plan := buildTestPlan(t)
	plan.Range.FuelLimited = false

	report := Report(plan, assess.SearchResources{}, assess.RiskAssessment{Level: assess.RiskLow})
	if !strings.Contains(report, "descent-limited") {
		t.Error("report missing descent-limited note")
	}
}
