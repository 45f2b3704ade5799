package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/skysar/sarplan/internal/geo"
)

// Asset describes one searching unit's coverage capability. Speed is used for
// time estimation only, never for path shape.
type Asset struct {
	Name         string  `json:"name"`
	SweepWidthKm float64 `json:"sweep_width_km"`
	SpeedKmh     float64 `json:"speed_kmh"`
}

// band is a contiguous range of grid rows assigned to one asset.
type band struct {
	rows       []int // row indexes, ascending
	cellCount  int
	peakWeight float64
}

// PlanPatterns partitions the grid into contiguous row bands, one per asset,
// and emits a serpentine waypoint sequence over each band. Bands with the
// highest peak weight go to the first assets; within a band the sweep starts
// at the end nearer the grid's peak cell so the most probable cells are
// visited first. Consecutive waypoints are adjacent cells, so transit between
// passes is minimal.
//
// Extra assets beyond the number of usable bands receive empty patterns
// marked unassigned. The aggregate sweep estimate is the slowest asset's
// path time, since assets search their sub-regions concurrently.
func PlanPatterns(grid Grid, assets []Asset) ([]Pattern, float64, error) {
	if len(grid.Cells) == 0 {
		return nil, 0, fmt.Errorf("%w: empty probability grid", ErrInvalidGeometry)
	}
	if len(assets) == 0 {
		return nil, 0, fmt.Errorf("%w: no search assets configured", ErrConfiguration)
	}
	for i, a := range assets {
		if a.SweepWidthKm <= 0 || a.SpeedKmh <= 0 {
			return nil, 0, fmt.Errorf("%w: asset %d sweep %.2f km speed %.1f km/h",
				ErrConfiguration, i, a.SweepWidthKm, a.SpeedKmh)
		}
	}

	byRow := cellsByRow(grid)
	rows := make([]int, 0, len(byRow))
	for r := range byRow {
		rows = append(rows, r)
	}
	sort.Ints(rows)

	bands := splitBands(grid, byRow, rows, len(assets))

	// Highest-probability band first.
	sort.SliceStable(bands, func(i, j int) bool {
		return bands[i].peakWeight > bands[j].peakWeight
	})

	peakRow := grid.PeakCell().Row
	patterns := make([]Pattern, len(assets))
	var sweepHours float64

	for i := range assets {
		patterns[i].Asset = i
		if i >= len(bands) {
			patterns[i].Unassigned = true
			continue
		}
		patterns[i].Waypoints = serpentine(byRow, bands[i], peakRow, assets[i], grid.CellSizeKm)
		patterns[i].PathLengthKm = pathLength(patterns[i].Waypoints)

		if hours := patterns[i].PathLengthKm / assets[i].SpeedKmh; hours > sweepHours {
			sweepHours = hours
		}
	}

	return patterns, sweepHours, nil
}

// cellsByRow indexes the grid cells by row, cells within a row ordered by
// column (the grid is stored row-major, so order is preserved).
func cellsByRow(grid Grid) map[int][]Cell {
	byRow := make(map[int][]Cell)
	for _, c := range grid.Cells {
		byRow[c.Row] = append(byRow[c.Row], c)
	}
	return byRow
}

// splitBands partitions the non-empty rows into at most maxBands contiguous
// bands with roughly equal cell counts.
func splitBands(grid Grid, byRow map[int][]Cell, rows []int, maxBands int) []band {
	numBands := maxBands
	if numBands > len(rows) {
		numBands = len(rows)
	}
	target := float64(len(grid.Cells)) / float64(numBands)

	bands := make([]band, 0, numBands)
	current := band{}
	for _, r := range rows {
		cells := byRow[r]
		current.rows = append(current.rows, r)
		current.cellCount += len(cells)
		for _, c := range cells {
			if c.Weight > current.peakWeight {
				current.peakWeight = c.Weight
			}
		}
		bandsLeft := numBands - len(bands)
		if float64(current.cellCount) >= target && bandsLeft > 1 {
			bands = append(bands, current)
			current = band{}
		}
	}
	if len(current.rows) > 0 {
		bands = append(bands, current)
	}
	return bands
}

// serpentine emits boustrophedon waypoints over a band: alternating column
// direction each pass, starting from the band end nearer the grid's peak
// row. An asset whose sweep width spans several rows flies one pass per row
// group, along the group's middle row.
func serpentine(byRow map[int][]Cell, b band, peakRow int, asset Asset, cellSizeKm float64) []Waypoint {
	rows := append([]int(nil), b.rows...)

	// Start the sweep at the end of the band closest to the peak.
	if abs(rows[len(rows)-1]-peakRow) < abs(rows[0]-peakRow) {
		reverseInts(rows)
	}

	stride := int(math.Round(asset.SweepWidthKm / cellSizeKm))
	if stride < 1 {
		stride = 1
	}

	var waypoints []Waypoint
	reversed := false
	for start := 0; start < len(rows); start += stride {
		end := start + stride
		if end > len(rows) {
			end = len(rows)
		}
		passRow := rows[start+(end-start)/2]

		cells := append([]Cell(nil), byRow[passRow]...)
		if reversed {
			reverseCells(cells)
		}
		for _, c := range cells {
			waypoints = append(waypoints, Waypoint{Position: c.Center, Index: len(waypoints)})
		}
		reversed = !reversed
	}
	return waypoints
}

// pathLength sums the great-circle distance along consecutive waypoints.
func pathLength(waypoints []Waypoint) float64 {
	var total float64
	for i := 1; i < len(waypoints); i++ {
		total += geo.Distance(waypoints[i-1].Position, waypoints[i].Position)
	}
	return total
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseCells(s []Cell) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
