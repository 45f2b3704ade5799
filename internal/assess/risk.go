package assess

import "github.com/skysar/sarplan/internal/planner"

// Risk levels, ordered by severity.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// RiskRubric holds the weather thresholds that degrade search conditions.
// The values are operational judgment, not physics, which is why they live
// in configuration rather than constants.
type RiskRubric struct {
	HighWindKt      float64 // above this, HIGH
	LowVisibilityKm float64 // below this, HIGH
	HeavyPrecipMmHr float64 // above this, MEDIUM
}

// DefaultRiskRubric returns the standard weather-risk thresholds.
func DefaultRiskRubric() RiskRubric {
	return RiskRubric{
		HighWindKt:      25,
		LowVisibilityKm: 5,
		HeavyPrecipMmHr: 5,
	}
}

// RiskAssessment is the scored search-conditions outcome.
type RiskAssessment struct {
	Level   string   `json:"level"`
	Factors []string `json:"factors"`
}

// AssessRisk scores search conditions from the weather snapshot alone.
// The worst triggered factor determines the level.
func AssessRisk(wx planner.WeatherConditions, r RiskRubric) RiskAssessment {
	a := RiskAssessment{Level: RiskLow}

	if wx.WindSpeedKt > r.HighWindKt {
		a.Level = RiskHigh
		a.Factors = append(a.Factors, "High winds")
	}
	if wx.VisibilityKm < r.LowVisibilityKm {
		a.Level = RiskHigh
		a.Factors = append(a.Factors, "Poor visibility")
	}
	if wx.PrecipitationMmHr > r.HeavyPrecipMmHr {
		if a.Level == RiskLow {
			a.Level = RiskMedium
		}
		a.Factors = append(a.Factors, "Significant precipitation")
	}

	if len(a.Factors) == 0 {
		a.Factors = append(a.Factors, "Good weather conditions")
	}
	return a
}
