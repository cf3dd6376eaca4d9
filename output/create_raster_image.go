package output

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/forest-guardian/landwatch/internal/bandmath"
)

// Range fixes the value range of a rendered grid. The zero value means
// "use the grid's own min and max".
type Range struct {
	Min, Max float64
}

func (r Range) resolve(grid [][]float64) (float64, float64) {
	if r.Min != r.Max {
		return r.Min, r.Max
	}
	lo, hi, ok := bandmath.MinMax(grid)
	if !ok {
		return 0, 0
	}
	return lo, hi
}

func gridImage(grid [][]float64, cmap Colormap, rng Range) *image.RGBA {
	height, width := bandmath.Shape(grid)
	vmin, vmax := rng.resolve(grid)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y, row := range grid {
		for x, v := range row {
			img.SetRGBA(x, y, cmap.At(Scale(v, vmin, vmax)))
		}
	}
	return img
}

func savePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output folder for %s: %w", path, err)
	}
	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// SaveGrid writes grid pixel for pixel through cmap, without decorations.
func SaveGrid(path string, grid [][]float64, cmap Colormap, rng Range) error {
	return savePNG(path, gridImage(grid, cmap, rng))
}

// SaveRGB writes a composite with channels in [0,1].
func SaveRGB(path string, rgb bandmath.RGB) error {
	height := len(rgb)
	width := 0
	if height > 0 {
		width = len(rgb[0])
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y, row := range rgb {
		for x, px := range row {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(bandmath.Clip(px[0], 0, 1) * 255),
				G: uint8(bandmath.Clip(px[1], 0, 1) * 255),
				B: uint8(bandmath.Clip(px[2], 0, 1) * 255),
				A: 255,
			})
		}
	}
	return savePNG(path, img)
}

const (
	mapMargin     = 30
	colorbarWidth = 16
	colorbarSpace = 70
)

// MapOptions decorate a rendered map.
type MapOptions struct {
	Title         string
	Range         Range
	Colorbar      bool
	ColorbarLabel string
}

// SaveMap renders grid with a title and an optional vertical colorbar.
func SaveMap(path string, grid [][]float64, cmap Colormap, opts MapOptions) error {
	height, width := bandmath.Shape(grid)
	if width == 0 || height == 0 {
		return fmt.Errorf("cannot render empty grid to %s", path)
	}
	vmin, vmax := opts.Range.resolve(grid)
	body := gridImage(grid, cmap, Range{Min: vmin, Max: vmax})

	canvasW := width + 2*mapMargin
	if opts.Colorbar {
		canvasW += colorbarSpace
	}
	canvasH := height + 2*mapMargin

	dc := gg.NewContext(canvasW, canvasH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.DrawImage(body, mapMargin, mapMargin)

	dc.SetRGB(0, 0, 0)
	if opts.Title != "" {
		dc.DrawStringAnchored(opts.Title, float64(canvasW)/2, mapMargin/2, 0.5, 0.5)
	}

	if opts.Colorbar {
		x0 := float64(mapMargin + width + 15)
		y0 := float64(mapMargin)
		barH := float64(height)
		for i := 0; i < height; i++ {
			t := 1 - float64(i)/float64(max(height-1, 1))
			c := cmap.At(t)
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.DrawRectangle(x0, y0+float64(i), colorbarWidth, 1)
			dc.Fill()
		}
		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1)
		dc.DrawRectangle(x0, y0, colorbarWidth, barH)
		dc.Stroke()
		labelX := x0 + colorbarWidth + 4
		dc.DrawStringAnchored(fmt.Sprintf("%.2g", vmax), labelX, y0, 0, 0.5)
		dc.DrawStringAnchored(fmt.Sprintf("%.2g", (vmin+vmax)/2), labelX, y0+barH/2, 0, 0.5)
		dc.DrawStringAnchored(fmt.Sprintf("%.2g", vmin), labelX, y0+barH, 0, 0.5)
		if opts.ColorbarLabel != "" {
			dc.DrawStringAnchored(opts.ColorbarLabel, x0+colorbarWidth/2, y0+barH+12, 0.5, 0.5)
		}
	}

	return savePNG(path, dc.Image())
}
