package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents the main application configuration structure
// containing all configuration sections
type Config struct {
	Server    ServerConfig    `toml:"server"`    // HTTP server settings
	Logging   LoggingConfig   `toml:"logging"`   // Application logging settings
	Storage   StorageConfig   `toml:"storage"`   // Plan archive settings
	Planner   PlannerConfig   `toml:"planner"`   // Search-area pipeline tunables
	Assets    []AssetConfig   `toml:"assets"`    // Default search asset fleet
	Risk      RiskConfig      `toml:"risk"`      // Weather risk thresholds
	Resources ResourcesConfig `toml:"resources"` // Resource sizing rubric
	Output    OutputConfig    `toml:"output"`    // Rendered artifact settings

	// Keys present in the decoded TOML file. Distinguishes an explicit zero
	// from an unset value when applying defaults.
	definedKeys map[string]bool
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port               int      `toml:"port"`                  // HTTP port for the server
	Host               string   `toml:"host"`                  // Host address to bind to (e.g., 127.0.0.1 for localhost only, 0.0.0.0 for all interfaces)
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`  // List of origins allowed for CORS requests (use ["*"] for all origins)
	ReadTimeoutSecs    int      `toml:"read_timeout_seconds"`  // Maximum duration for reading the entire request (0 = no timeout)
	WriteTimeoutSecs   int      `toml:"write_timeout_seconds"` // Maximum duration for writing the response (0 = no timeout)
	IdleTimeoutSecs    int      `toml:"idle_timeout_seconds"`  // Maximum duration to wait for the next request when keep-alives are enabled
}

// LoggingConfig contains application logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`  // Log level: "debug", "info", "warn", or "error"
	Format string `toml:"format"` // Log format: "json" for structured logging, "console" for human-readable
}

// StorageConfig contains plan archive configuration
type StorageConfig struct {
	SQLitePath    string `toml:"sqlite_path"`      // Path to the SQLite plan archive file
	MaxPlansInAPI int    `toml:"max_plans_in_api"` // Maximum plans returned by the list endpoint
}

// PlannerConfig contains the search-area pipeline tunables. Zero values fall
// back to the built-in defaults at validation time.
type PlannerConfig struct {
	BurnRateKgPerHour   float64 `toml:"burn_rate_kg_per_hour"` // Assumed fuel consumption at cruise power
	UncertaintyFraction float64 `toml:"uncertainty_fraction"`  // Fraction of max range used as search radius
	MinRadiusKm         float64 `toml:"min_radius_km"`         // Search radius floor
	DriftCapFraction    float64 `toml:"drift_cap_fraction"`    // Wind displacement cap as a fraction of max range
	CellSizeKm          float64 `toml:"cell_size_km"`          // Probability grid resolution
	MaxCells            int     `toml:"max_cells"`             // Upper bound on total grid cells
	DirectionalBias     float64 `toml:"directional_bias"`      // Downwind weighting bias, [0,1)
	ForcedDescentFpm    float64 `toml:"forced_descent_fpm"`    // Descent rate treated as a forced landing
	MagneticHeadings    bool    `toml:"magnetic_headings"`     // Treat reported headings as magnetic
}

// AssetConfig describes one search asset in the default fleet
type AssetConfig struct {
	Name         string  `toml:"name"`           // Human-readable asset name (e.g., "Helo 1")
	SweepWidthKm float64 `toml:"sweep_width_km"` // Effective sensor sweep width
	SpeedKmh     float64 `toml:"speed_kmh"`      // Search speed, used for sweep time estimation
}

// RiskConfig contains the weather thresholds for operational risk assessment.
// Zero values fall back to defaults.
type RiskConfig struct {
	HighWindKt      float64 `toml:"high_wind_kt"`       // Wind at or above this is HIGH risk
	LowVisibilityKm float64 `toml:"low_visibility_km"`  // Visibility below this is HIGH risk
	HeavyPrecipMmHr float64 `toml:"heavy_precip_mm_hr"` // Precipitation above this is MEDIUM risk
}

// ResourcesConfig contains the resource sizing rubric. Zero values fall back
// to defaults.
type ResourcesConfig struct {
	HelicopterAreaKm2   float64 `toml:"helicopter_area_km2"`     // Search area per helicopter
	GroundTeamAreaKm2   float64 `toml:"ground_team_area_km2"`    // Search area per ground team
	DroneAreaKm2        float64 `toml:"drone_area_km2"`          // Search area per drone
	MinHelicopters      int     `toml:"min_helicopters"`         // Floor on helicopter count
	MinGroundTeams      int     `toml:"min_ground_teams"`        // Floor on ground team count
	MinDrones           int     `toml:"min_drones"`              // Floor on drone count
	HelicopterRateKm2Hr float64 `toml:"helicopter_rate_km2_hr"`  // Helicopter coverage rate
	GroundTeamRateKm2Hr float64 `toml:"ground_team_rate_km2_hr"` // Ground team coverage rate
	DroneRateKm2Hr      float64 `toml:"drone_rate_km2_hr"`       // Drone coverage rate
}

// OutputConfig contains rendered artifact settings
type OutputConfig struct {
	Dir string `toml:"dir"` // Directory for rendered GeoJSON/heatmap files, served at /files/
}

// Load loads the configuration from the specified file path
func Load(path string) (*Config, error) {
	var config Config

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	meta, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.definedKeys = make(map[string]bool)
	for _, key := range meta.Keys() {
		config.definedKeys[key.String()] = true
	}

	return &config, nil
}

// LoadWithFallback loads the configuration by checking multiple locations
// in order of preference
func LoadWithFallback(preferredPath string) (*Config, error) {
	searchPaths := []string{
		preferredPath,
		"configs/config.toml",
		"config.toml",
	}

	var lastErr error
	for _, path := range searchPaths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			config, err := Load(path)
			if err != nil {
				lastErr = fmt.Errorf("failed to load config from %s: %w", path, err)
				continue
			}
			return config, nil
		}
		lastErr = fmt.Errorf("config file not found: %s", path)
	}

	return nil, fmt.Errorf("config file not found in any of the expected locations: %w", lastErr)
}

// Validate validates the full configuration and applies defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if err := c.ValidateLogging(); err != nil {
		return err
	}

	if c.Storage.SQLitePath == "" {
		return fmt.Errorf("storage sqlite_path is required")
	}
	if c.Storage.MaxPlansInAPI <= 0 {
		c.Storage.MaxPlansInAPI = 50
	}

	if err := c.ValidatePlanner(); err != nil {
		return err
	}
	if err := c.ValidateAssets(); err != nil {
		return err
	}
	if err := c.ValidateAssess(); err != nil {
		return err
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}

	return nil
}

// ValidateLogging validates the logging section and applies defaults
func (c *Config) ValidateLogging() error {
	switch c.Logging.Level {
	case "":
		c.Logging.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "":
		c.Logging.Format = "console"
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	return nil
}

// ValidatePlanner validates the planner tunables and applies defaults
func (c *Config) ValidatePlanner() error {
	c.defaultFloat(&c.Planner.BurnRateKgPerHour, 48, "planner.burn_rate_kg_per_hour")
	c.defaultFloat(&c.Planner.UncertaintyFraction, 0.2, "planner.uncertainty_fraction")
	c.defaultFloat(&c.Planner.MinRadiusKm, 5, "planner.min_radius_km")
	c.defaultFloat(&c.Planner.DriftCapFraction, 0.5, "planner.drift_cap_fraction")
	c.defaultFloat(&c.Planner.CellSizeKm, 1, "planner.cell_size_km")
	c.defaultFloat(&c.Planner.DirectionalBias, 0.3, "planner.directional_bias")
	c.defaultFloat(&c.Planner.ForcedDescentFpm, 1000, "planner.forced_descent_fpm")
	if c.Planner.MaxCells == 0 {
		c.Planner.MaxCells = 250000
	}

	if c.Planner.BurnRateKgPerHour <= 0 {
		return fmt.Errorf("planner burn_rate_kg_per_hour must be positive: %f", c.Planner.BurnRateKgPerHour)
	}
	if c.Planner.UncertaintyFraction <= 0 || c.Planner.UncertaintyFraction > 1 {
		return fmt.Errorf("planner uncertainty_fraction must be in (0,1]: %f", c.Planner.UncertaintyFraction)
	}
	if c.Planner.MinRadiusKm <= 0 {
		return fmt.Errorf("planner min_radius_km must be positive: %f", c.Planner.MinRadiusKm)
	}
	if c.Planner.DriftCapFraction <= 0 || c.Planner.DriftCapFraction > 1 {
		return fmt.Errorf("planner drift_cap_fraction must be in (0,1]: %f", c.Planner.DriftCapFraction)
	}
	if c.Planner.CellSizeKm <= 0 {
		return fmt.Errorf("planner cell_size_km must be positive: %f", c.Planner.CellSizeKm)
	}
	if c.Planner.MaxCells < 0 {
		return fmt.Errorf("planner max_cells must be positive: %d", c.Planner.MaxCells)
	}
	if c.Planner.DirectionalBias < 0 || c.Planner.DirectionalBias >= 1 {
		return fmt.Errorf("planner directional_bias must be in [0,1): %f", c.Planner.DirectionalBias)
	}
	if c.Planner.ForcedDescentFpm <= 0 {
		return fmt.Errorf("planner forced_descent_fpm must be positive: %f", c.Planner.ForcedDescentFpm)
	}
	return nil
}

// ValidateAssets validates the asset fleet and installs a default fleet when
// none is configured
func (c *Config) ValidateAssets() error {
	if len(c.Assets) == 0 {
		c.Assets = []AssetConfig{
			{Name: "Helo 1", SweepWidthKm: 1.0, SpeedKmh: 220},
			{Name: "Helo 2", SweepWidthKm: 1.0, SpeedKmh: 220},
			{Name: "Drone 1", SweepWidthKm: 0.5, SpeedKmh: 80},
		}
		return nil
	}

	for i, a := range c.Assets {
		if a.Name == "" {
			return fmt.Errorf("asset #%d: name is required", i+1)
		}
		if a.SweepWidthKm <= 0 {
			return fmt.Errorf("asset %q: invalid sweep width: %f", a.Name, a.SweepWidthKm)
		}
		if a.SpeedKmh <= 0 {
			return fmt.Errorf("asset %q: invalid speed: %f", a.Name, a.SpeedKmh)
		}
	}
	return nil
}

// ValidateAssess validates the risk and resource rubrics and applies defaults
func (c *Config) ValidateAssess() error {
	c.defaultFloat(&c.Risk.HighWindKt, 25, "risk.high_wind_kt")
	c.defaultFloat(&c.Risk.LowVisibilityKm, 5, "risk.low_visibility_km")
	c.defaultFloat(&c.Risk.HeavyPrecipMmHr, 5, "risk.heavy_precip_mm_hr")
	if c.Risk.HighWindKt < 0 || c.Risk.LowVisibilityKm < 0 || c.Risk.HeavyPrecipMmHr < 0 {
		return fmt.Errorf("risk thresholds must be non-negative")
	}

	c.defaultFloat(&c.Resources.HelicopterAreaKm2, 100, "resources.helicopter_area_km2")
	c.defaultFloat(&c.Resources.GroundTeamAreaKm2, 50, "resources.ground_team_area_km2")
	c.defaultFloat(&c.Resources.DroneAreaKm2, 25, "resources.drone_area_km2")
	if c.Resources.MinHelicopters <= 0 {
		c.Resources.MinHelicopters = 1
	}
	if c.Resources.MinGroundTeams <= 0 {
		c.Resources.MinGroundTeams = 2
	}
	if c.Resources.MinDrones <= 0 {
		c.Resources.MinDrones = 2
	}
	c.defaultFloat(&c.Resources.HelicopterRateKm2Hr, 30, "resources.helicopter_rate_km2_hr")
	c.defaultFloat(&c.Resources.GroundTeamRateKm2Hr, 5, "resources.ground_team_rate_km2_hr")
	c.defaultFloat(&c.Resources.DroneRateKm2Hr, 15, "resources.drone_rate_km2_hr")
	if c.Resources.HelicopterAreaKm2 <= 0 || c.Resources.GroundTeamAreaKm2 <= 0 || c.Resources.DroneAreaKm2 <= 0 {
		return fmt.Errorf("resource area thresholds must be positive")
	}
	if c.Resources.HelicopterRateKm2Hr <= 0 || c.Resources.GroundTeamRateKm2Hr <= 0 || c.Resources.DroneRateKm2Hr <= 0 {
		return fmt.Errorf("resource coverage rates must be positive")
	}
	return nil
}

// defaultFloat applies def when the value is zero and the key was not written
// in the config file. An explicit zero in the file is kept, so values where
// zero is meaningful (directional_bias, risk thresholds) survive to
// validation.
func (c *Config) defaultFloat(v *float64, def float64, key string) {
	if *v == 0 && !c.definedKeys[key] {
		*v = def
	}
}
