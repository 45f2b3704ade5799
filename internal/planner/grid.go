package planner

import (
	"fmt"
	"math"

	"github.com/skysar/sarplan/internal/geo"
)

// BuildGrid tiles a square of side 2*radius centered on the search area into
// cells and assigns each a relative likelihood weight: a Gaussian falloff
// with distance from the center (sigma = radius/3) multiplied by a
// directional factor that penalizes cells away from the downwind bearing.
// The factor is 1 downwind and 1-bias upwind. The grid side always has an
// odd cell count so one cell sits on the exact center; that cell takes no
// bias and carries the maximum weight of 1.
//
// Cells wholly outside the search circle are excluded. A resolution that
// yields no cells, or more cells than the configured bound, is a
// configuration error.
func BuildGrid(area SearchArea, downwindBearingDeg float64, t Tunables) (Grid, error) {
	if !area.Center.Valid() {
		return Grid{}, fmt.Errorf("%w: grid center %+v", ErrInvalidGeometry, area.Center)
	}
	if math.IsNaN(area.RadiusKm) || math.IsInf(area.RadiusKm, 0) || area.RadiusKm <= 0 {
		return Grid{}, fmt.Errorf("%w: search radius %.3f km", ErrInvalidGeometry, area.RadiusKm)
	}
	if t.CellSizeKm > 2*area.RadiusKm {
		return Grid{}, fmt.Errorf("%w: cell size %.2f km yields zero cells for radius %.2f km",
			ErrConfiguration, t.CellSizeKm, area.RadiusKm)
	}

	n := int(math.Ceil(2 * area.RadiusKm / t.CellSizeKm))
	if n%2 == 0 {
		// An even side leaves no cell on the center itself; the peak must
		// stay on the distance-zero cell.
		n++
	}
	if n*n > t.MaxCells {
		return Grid{}, fmt.Errorf("%w: %dx%d cells exceeds limit %d (cell size %.3f km, radius %.1f km)",
			ErrConfiguration, n, n, t.MaxCells, t.CellSizeKm, area.RadiusKm)
	}

	grid := Grid{
		Area:            area,
		Rows:            n,
		Cols:            n,
		CellSizeKm:      t.CellSizeKm,
		DownwindBearing: geo.NormalizeBearing(downwindBearingDeg),
		Cells:           make([]Cell, 0, n*n),
	}

	half := t.CellSizeKm / 2
	sigma := area.RadiusKm / 3 // 3-sigma rule
	offset := float64(n-1) / 2

	for row := 0; row < n; row++ {
		// Rows run north to south so the cell order matches map reading order.
		northKm := (offset - float64(row)) * t.CellSizeKm
		for col := 0; col < n; col++ {
			eastKm := (float64(col) - offset) * t.CellSizeKm

			center := geo.Destination(area.Center, 0, northKm)
			center = geo.Destination(center, 90, eastKm)

			dist := geo.Distance(area.Center, center)
			if dist-half > area.RadiusKm {
				continue
			}

			weight := math.Exp(-dist * dist / (2 * sigma * sigma))
			// Only the center cell lies within half a cell of the center; it
			// takes no directional penalty.
			if dist > half && t.DirectionalBias > 0 {
				theta := (geo.Bearing(area.Center, center) - grid.DownwindBearing) * math.Pi / 180
				weight *= 1 - t.DirectionalBias*(1-math.Cos(theta))/2
			}

			grid.Cells = append(grid.Cells, Cell{
				Center:      center,
				Row:         row,
				Col:         col,
				Weight:      weight,
				HalfWidthKm: half,
			})
		}
	}

	if len(grid.Cells) == 0 {
		return Grid{}, fmt.Errorf("%w: no cells within radius %.2f km at cell size %.2f km",
			ErrConfiguration, area.RadiusKm, t.CellSizeKm)
	}
	return grid, nil
}

// PeakCell returns the highest-weighted cell of the grid.
func (g Grid) PeakCell() Cell {
	peak := g.Cells[0]
	for _, c := range g.Cells[1:] {
		if c.Weight > peak.Weight {
			peak = c
		}
	}
	return peak
}
