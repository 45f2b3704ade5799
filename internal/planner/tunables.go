package planner

import "fmt"

// Tunables are the planning constants threaded through the pipeline. They are
// explicit values rather than package globals so test scenarios can override
// them deterministically.
type Tunables struct {
	// BurnRateKgPerHour is the assumed fuel consumption at cruise ground speed.
	BurnRateKgPerHour float64

	// UncertaintyFraction scales max range into the search radius.
	UncertaintyFraction float64

	// MinRadiusKm floors the search radius; a crash site still has nonzero
	// location uncertainty even with zero reported fuel.
	MinRadiusKm float64

	// DriftCapFraction bounds wind displacement to a fraction of max range so
	// extreme wind inputs cannot relocate the center outside the reachable
	// envelope.
	DriftCapFraction float64

	// CellSizeKm is the probability grid resolution.
	CellSizeKm float64

	// MaxCells bounds the total grid size; resolutions that would exceed it
	// are rejected rather than allowed to run unbounded.
	MaxCells int

	// DirectionalBias in [0,1) penalizes cells away from the downwind
	// bearing. 0 disables the bias.
	DirectionalBias float64

	// ForcedDescentFpm is the descent rate at which the aircraft is treated
	// as in a forced landing, capping endurance at time-to-ground-contact.
	// Shallower descents are routine and do not bound endurance.
	ForcedDescentFpm float64
}

// DefaultTunables returns the planning constants used when the configuration
// does not override them. The burn rate matches a light twin at cruise; the
// 0.2 uncertainty fraction and the 3-sigma grid falloff follow established
// SAR area practice.
func DefaultTunables() Tunables {
	return Tunables{
		BurnRateKgPerHour:   48.0,
		UncertaintyFraction: 0.2,
		MinRadiusKm:         5.0,
		DriftCapFraction:    0.5,
		CellSizeKm:          1.0,
		MaxCells:            250000,
		DirectionalBias:     0.3,
		ForcedDescentFpm:    1000.0,
	}
}

// Validate checks the tunables for values that cannot produce a usable plan.
func (t Tunables) Validate() error {
	if t.BurnRateKgPerHour <= 0 {
		return fmt.Errorf("%w: burn rate must be positive, got %.3f", ErrConfiguration, t.BurnRateKgPerHour)
	}
	if t.UncertaintyFraction <= 0 || t.UncertaintyFraction > 1 {
		return fmt.Errorf("%w: uncertainty fraction must be in (0,1], got %.3f", ErrConfiguration, t.UncertaintyFraction)
	}
	if t.MinRadiusKm <= 0 {
		return fmt.Errorf("%w: minimum radius must be positive, got %.3f", ErrConfiguration, t.MinRadiusKm)
	}
	if t.DriftCapFraction <= 0 || t.DriftCapFraction > 1 {
		return fmt.Errorf("%w: drift cap fraction must be in (0,1], got %.3f", ErrConfiguration, t.DriftCapFraction)
	}
	if t.CellSizeKm <= 0 {
		return fmt.Errorf("%w: cell size must be positive, got %.3f", ErrConfiguration, t.CellSizeKm)
	}
	if t.MaxCells <= 0 {
		return fmt.Errorf("%w: max cells must be positive, got %d", ErrConfiguration, t.MaxCells)
	}
	if t.DirectionalBias < 0 || t.DirectionalBias >= 1 {
		return fmt.Errorf("%w: directional bias must be in [0,1), got %.3f", ErrConfiguration, t.DirectionalBias)
	}
	if t.ForcedDescentFpm <= 0 {
		return fmt.Errorf("%w: forced descent rate must be positive, got %.3f", ErrConfiguration, t.ForcedDescentFpm)
	}
	return nil
}
