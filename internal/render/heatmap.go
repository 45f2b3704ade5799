package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/skysar/sarplan/internal/planner"
)

// pixelsPerCell scales the heatmap so small grids still render legibly.
const pixelsPerCell = 4

// HeatmapPNG rasterizes the probability grid into a PNG using a hot
// colormap (black through red and orange to white). Cells clipped out of
// the circle stay black.
func HeatmapPNG(grid planner.Grid) ([]byte, error) {
	if grid.Rows == 0 || grid.Cols == 0 || len(grid.Cells) == 0 {
		return nil, fmt.Errorf("empty grid")
	}

	peak := grid.PeakCell().Weight
	img := image.NewRGBA(image.Rect(0, 0, grid.Cols*pixelsPerCell, grid.Rows*pixelsPerCell))

	for _, c := range grid.Cells {
		intensity := 0.0
		if peak > 0 {
			intensity = c.Weight / peak
		}
		col := hotColor(intensity)
		for dy := 0; dy < pixelsPerCell; dy++ {
			for dx := 0; dx < pixelsPerCell; dx++ {
				img.Set(c.Col*pixelsPerCell+dx, c.Row*pixelsPerCell+dy, col)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode heatmap: %w", err)
	}
	return buf.Bytes(), nil
}

// hotColor maps intensity in [0,1] onto the hot colormap: black, red,
// yellow, white.
func hotColor(v float64) color.RGBA {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	switch {
	case v < 1.0/3:
		return color.RGBA{R: uint8(v * 3 * 255), A: 255}
	case v < 2.0/3:
		return color.RGBA{R: 255, G: uint8((v - 1.0/3) * 3 * 255), A: 255}
	default:
		return color.RGBA{R: 255, G: 255, B: uint8((v - 2.0/3) * 3 * 255), A: 255}
	}
}
