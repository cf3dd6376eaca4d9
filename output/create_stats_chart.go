package output

import (
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"
)

// Bar is one labelled column of a stats chart.
type Bar struct {
	Label string
	Value float64
	Color color.RGBA
}

var (
	ColorBlue  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	ColorGray  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	ColorGreen = color.RGBA{R: 0, G: 128, B: 0, A: 255}
	ColorRed   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

const (
	chartWidth  = 640
	chartHeight = 480
	chartLeft   = 80
	chartRight  = 20
	chartTop    = 50
	chartBottom = 50
	chartTicks  = 5
)

// CreateStatsChart draws a vertical bar chart of pixel counts.
func CreateStatsChart(path, title, yLabel string, bars []Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("no bars provided for %s", path)
	}

	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	plotW := float64(chartWidth - chartLeft - chartRight)
	plotH := float64(chartHeight - chartTop - chartBottom)
	originX := float64(chartLeft)
	originY := float64(chartTop) + plotH

	maxValue := 0.0
	for _, bar := range bars {
		maxValue = math.Max(maxValue, bar.Value)
	}
	if maxValue == 0 {
		maxValue = 1
	}
	maxValue *= 1.05

	// y axis with ticks
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawLine(originX, float64(chartTop), originX, originY)
	dc.DrawLine(originX, originY, originX+plotW, originY)
	dc.Stroke()
	for i := 0; i <= chartTicks; i++ {
		v := maxValue * float64(i) / chartTicks
		y := originY - plotH*float64(i)/chartTicks
		dc.DrawLine(originX-4, y, originX, y)
		dc.Stroke()
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", v), originX-8, y, 1, 0.5)
	}

	slot := plotW / float64(len(bars))
	barW := slot * 0.6
	for i, bar := range bars {
		h := plotH * bar.Value / maxValue
		x := originX + slot*float64(i) + (slot-barW)/2
		dc.SetRGB255(int(bar.Color.R), int(bar.Color.G), int(bar.Color.B))
		dc.DrawRectangle(x, originY-h, barW, h)
		dc.Fill()

		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(bar.Label, x+barW/2, originY+15, 0.5, 0.5)
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", bar.Value), x+barW/2, originY-h-10, 0.5, 0.5)
	}

	dc.DrawStringAnchored(title, chartWidth/2, chartTop/2, 0.5, 0.5)

	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 20, float64(chartTop)+plotH/2)
	dc.DrawStringAnchored(yLabel, 20, float64(chartTop)+plotH/2, 0.5, 0.5)
	dc.Pop()

	return savePNG(path, dc.Image())
}
