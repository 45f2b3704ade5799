package assess

import (
	"testing"

	"github.com/skysar/sarplan/internal/planner"
)

func TestAssessRisk(t *testing.T) {
	rubric := DefaultRiskRubric()

	tests := []struct {
		name       string
		wx         planner.WeatherConditions
		wantLevel  string
		wantFactor string
	}{
		{
			"calm and clear",
			planner.WeatherConditions{WindSpeedKt: 5, VisibilityKm: 10},
			RiskLow, "Good weather conditions",
		},
		{
			"high winds",
			planner.WeatherConditions{WindSpeedKt: 30, VisibilityKm: 10},
			RiskHigh, "High winds",
		},
		{
			"poor visibility",
			planner.WeatherConditions{WindSpeedKt: 5, VisibilityKm: 2},
			RiskHigh, "Poor visibility",
		},
		{
			"heavy precipitation alone",
			planner.WeatherConditions{WindSpeedKt: 5, VisibilityKm: 10, PrecipitationMmHr: 8},
			RiskMedium, "Significant precipitation",
		},
		{
			"precip does not downgrade high",
			planner.WeatherConditions{WindSpeedKt: 30, VisibilityKm: 10, PrecipitationMmHr: 8},
			RiskHigh, "High winds",
		},
		{
			"wind at threshold is not high",
			planner.WeatherConditions{WindSpeedKt: 25, VisibilityKm: 10},
			RiskLow, "Good weather conditions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessRisk(tt.wx, rubric)
			if got.Level != tt.wantLevel {
				t.Errorf("Level = %s, want %s", got.Level, tt.wantLevel)
			}

			found := false
			for _, f := range got.Factors {
				if f == tt.wantFactor {
					found = true
				}
			}
			if !found {
				t.Errorf("Factors = %v, want to contain %q", got.Factors, tt.wantFactor)
			}
		})
	}
}

func TestAssessRiskMultipleFactors(t *testing.T) {
	wx := planner.WeatherConditions{WindSpeedKt: 40, VisibilityKm: 1, PrecipitationMmHr: 10}
	got := AssessRisk(wx, DefaultRiskRubric())

	if got.Level != RiskHigh {
		t.Errorf("Level = %s, want HIGH", got.Level)
	}
	if len(got.Factors) != 3 {
		t.Errorf("Factors = %v, want all three", got.Factors)
	}
}
