package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skysar/sarplan/internal/assess"
	"github.com/skysar/sarplan/internal/config"
	"github.com/skysar/sarplan/internal/geo"
	"github.com/skysar/sarplan/internal/planner"
	"github.com/skysar/sarplan/internal/render"
	"github.com/skysar/sarplan/pkg/logger"
)

func main() {
	lat := flag.Float64("lat", 0, "Last known latitude in decimal degrees")
	lon := flag.Float64("lon", 0, "Last known longitude in decimal degrees")
	alt := flag.Float64("alt", 0, "Last known altitude in feet")
	gs := flag.Float64("gs", 0, "Ground speed in km/h")
	vs := flag.Float64("vs", 0, "Vertical speed in feet per minute (negative = descending)")
	heading := flag.Float64("heading", 0, "Heading in degrees")
	windSpeed := flag.Float64("wind-speed", 0, "Wind speed in knots")
	windDir := flag.Float64("wind-dir", 0, "Direction the wind blows from, in degrees")
	visibility := flag.Float64("visibility", 10, "Visibility in km")
	precip := flag.Float64("precip", 0, "Precipitation rate in mm/h")
	fuel := flag.Float64("fuel", 0, "Remaining fuel in kg")
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	outDir := flag.String("out", "output", "Directory for rendered artifacts")
	flag.Parse()

	// Config is optional for the CLI: fall back to built-in defaults
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		cfg = &config.Config{}
	}
	if err := cfg.ValidatePlanner(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateAssets(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateAssess(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	tunables := planner.Tunables{
		BurnRateKgPerHour:   cfg.Planner.BurnRateKgPerHour,
		UncertaintyFraction: cfg.Planner.UncertaintyFraction,
		MinRadiusKm:         cfg.Planner.MinRadiusKm,
		DriftCapFraction:    cfg.Planner.DriftCapFraction,
		CellSizeKm:          cfg.Planner.CellSizeKm,
		MaxCells:            cfg.Planner.MaxCells,
		DirectionalBias:     cfg.Planner.DirectionalBias,
		ForcedDescentFpm:    cfg.Planner.ForcedDescentFpm,
	}

	assets := make([]planner.Asset, 0, len(cfg.Assets))
	for _, a := range cfg.Assets {
		assets = append(assets, planner.Asset{
			Name:         a.Name,
			SweepWidthKm: a.SweepWidthKm,
			SpeedKmh:     a.SpeedKmh,
		})
	}

	service, err := planner.NewService(tunables, assets, logger.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid planner configuration: %v\n", err)
		os.Exit(1)
	}

	input := planner.Input{
		LastKnown: geo.NewPosition(*lat, *lon, *alt),
		Kinematics: planner.Kinematics{
			GroundSpeedKmh:   *gs,
			VerticalSpeedFpm: *vs,
			HeadingDeg:       *heading,
			MagneticHeading:  cfg.Planner.MagneticHeadings,
		},
		Weather: planner.WeatherConditions{
			WindSpeedKt:       *windSpeed,
			WindDirectionDeg:  *windDir,
			VisibilityKm:      *visibility,
			PrecipitationMmHr: *precip,
		},
		Fuel: planner.FuelState{RemainingKg: *fuel},
	}

	plan, err := service.Plan(input, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Plan generation failed: %v\n", err)
		os.Exit(1)
	}

	resources := assess.CalculateResources(plan.Area, assess.ResourceRubric{
		HelicopterAreaKm2:   cfg.Resources.HelicopterAreaKm2,
		GroundTeamAreaKm2:   cfg.Resources.GroundTeamAreaKm2,
		DroneAreaKm2:        cfg.Resources.DroneAreaKm2,
		MinHelicopters:      cfg.Resources.MinHelicopters,
		MinGroundTeams:      cfg.Resources.MinGroundTeams,
		MinDrones:           cfg.Resources.MinDrones,
		HelicopterRateKm2Hr: cfg.Resources.HelicopterRateKm2Hr,
		GroundTeamRateKm2Hr: cfg.Resources.GroundTeamRateKm2Hr,
		DroneRateKm2Hr:      cfg.Resources.DroneRateKm2Hr,
	})
	risk := assess.AssessRisk(plan.Input.Weather, assess.RiskRubric{
		HighWindKt:      cfg.Risk.HighWindKt,
		LowVisibilityKm: cfg.Risk.LowVisibilityKm,
		HeavyPrecipMmHr: cfg.Risk.HeavyPrecipMmHr,
	})

	fmt.Print(render.Report(plan, resources, risk))

	if err := writeArtifacts(*outDir, plan); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write artifacts: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nArtifacts written to %s\n", *outDir)
}

func writeArtifacts(dir string, plan *planner.Plan) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	geojson, err := json.MarshalIndent(render.GeoJSON(plan), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal GeoJSON: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "search_area.geojson"), geojson, 0644); err != nil {
		return fmt.Errorf("failed to write GeoJSON: %w", err)
	}

	png, err := render.HeatmapPNG(plan.Grid)
	if err != nil {
		return fmt.Errorf("failed to render heatmap: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "search_heatmap.png"), png, 0644); err != nil {
		return fmt.Errorf("failed to write heatmap: %w", err)
	}

	return nil
}
