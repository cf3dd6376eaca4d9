package output

import (
	"image/color"
	"math"

	"github.com/mazznoer/colorgrad"
)

// Colormap is a named gradient sampled over [0,1].
type Colormap struct {
	Name string
	grad colorgrad.Gradient
}

func mustGradient(grad colorgrad.Gradient, err error) colorgrad.Gradient {
	if err != nil {
		panic(err)
	}
	return grad
}

var (
	// RdYlGn is the diverging red-yellow-green ramp used for vegetation.
	RdYlGn = Colormap{Name: "RdYlGn", grad: colorgrad.RdYlGn()}
	// Blues runs from near white to dark blue and is used for water products.
	Blues = Colormap{Name: "Blues", grad: colorgrad.Blues()}
	Gray  = Colormap{Name: "gray", grad: mustGradient(colorgrad.NewGradient().HtmlColors("#000000", "#ffffff").Build())}
)

// At returns the color at t in [0,1]. NaN maps to a transparent pixel.
func (c Colormap) At(t float64) color.RGBA {
	if math.IsNaN(t) {
		return color.RGBA{}
	}
	t = math.Max(0, math.Min(1, t))
	r, g, b := c.grad.At(t).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Scale maps v from [vmin, vmax] into [0,1]. A zero-width range maps to 0.
func Scale(v, vmin, vmax float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	if vmax == vmin {
		return 0
	}
	norm := (v - vmin) / (vmax - vmin)
	if norm < 0 {
		return 0
	}
	if norm > 1 {
		return 1
	}
	return norm
}
