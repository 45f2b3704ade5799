// Package render turns completed plans into presentation artifacts: a GeoJSON
// map document, a PNG probability heatmap, and a plain-text briefing. Nothing
// in here feeds back into the planning core.
package render

import (
	"fmt"

	"github.com/skysar/sarplan/internal/geo"
	"github.com/skysar/sarplan/internal/planner"
)

const circleSegments = 64

// FeatureCollection is a GeoJSON document.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds point, line, or polygon coordinates. GeoJSON order is
// [lon, lat].
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// GeoJSON builds the map document for a plan: last-known and center markers,
// the drift line between them, the search circle, per-asset waypoint tracks,
// and the grid cells as intensity points for client-side heat layers.
func GeoJSON(plan *planner.Plan) FeatureCollection {
	features := []Feature{
		pointFeature(plan.Input.LastKnown, map[string]any{
			"kind":  "last_known",
			"title": "Last Known Position",
		}),
		pointFeature(plan.Area.Center, map[string]any{
			"kind":      "search_center",
			"title":     fmt.Sprintf("Search Radius: %.2f km", plan.Area.RadiusKm),
			"radius_km": plan.Area.RadiusKm,
		}),
		{
			Type: "Feature",
			Geometry: Geometry{
				Type: "LineString",
				Coordinates: [][]float64{
					lonLat(plan.Input.LastKnown),
					lonLat(plan.Projected),
					lonLat(plan.Area.Center),
				},
			},
			Properties: map[string]any{
				"kind":     "drift_track",
				"drift_km": plan.DriftKm,
			},
		},
		circleFeature(plan.Area),
	}

	for _, p := range plan.Patterns {
		if len(p.Waypoints) == 0 {
			continue
		}
		coords := make([][]float64, len(p.Waypoints))
		for i, wp := range p.Waypoints {
			coords[i] = lonLat(wp.Position)
		}
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "LineString", Coordinates: coords},
			Properties: map[string]any{
				"kind":           "search_pattern",
				"asset":          p.Asset,
				"waypoints":      len(p.Waypoints),
				"path_length_km": p.PathLengthKm,
			},
		})
	}

	peak := plan.Grid.PeakCell().Weight
	for _, c := range plan.Grid.Cells {
		intensity := 0.0
		if peak > 0 {
			intensity = c.Weight / peak
		}
		features = append(features, pointFeature(c.Center, map[string]any{
			"kind":      "probability_cell",
			"intensity": intensity,
		}))
	}

	return FeatureCollection{Type: "FeatureCollection", Features: features}
}

func pointFeature(pos geo.Position, props map[string]any) Feature {
	return Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Point", Coordinates: lonLat(pos)},
		Properties: props,
	}
}

// circleFeature approximates the search circle as a closed polygon ring.
func circleFeature(area planner.SearchArea) Feature {
	ring := make([][]float64, 0, circleSegments+1)
	for i := 0; i <= circleSegments; i++ {
		bearing := float64(i) * 360 / circleSegments
		ring = append(ring, lonLat(geo.Destination(area.Center, bearing, area.RadiusKm)))
	}
	return Feature{
		Type:     "Feature",
		Geometry: Geometry{Type: "Polygon", Coordinates: [][][]float64{ring}},
		Properties: map[string]any{
			"kind":      "search_area",
			"radius_km": area.RadiusKm,
		},
	}
}

func lonLat(pos geo.Position) []float64 {
	return []float64{pos.Longitude, pos.Latitude}
}
