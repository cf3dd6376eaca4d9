package ui

import (
	"fmt"

	"github.com/forest-guardian/landwatch/internal/delivery"
	"github.com/forest-guardian/landwatch/internal/scene"
)

func PrintScenes(entries []scene.Entry) {
	if len(entries) == 0 {
		PrintWarning("No valid scenes found.")
		return
	}
	fmt.Fprintf(out, "%s\nAvailable scenes:%s\n", ColorGreen, ColorReset)
	for _, e := range entries {
		ndvi := "no NDVI"
		if e.HasNDVI() {
			ndvi = "NDVI"
		}
		printItem("%s (%s) NDWI, %s", e.Name, e.Date.Format(scene.DateLayout), ndvi)
	}
}

func PrintResult(res delivery.PipelineResult) {
	if res.Earlier != nil && res.Later != nil {
		PrintSuccess(fmt.Sprintf("Compared %s with %s", res.Earlier.Name, res.Later.Name))
	}
	if f := res.Flood; f != nil {
		fmt.Fprintf(out, "%sFlood extent%s\n", ColorBlue, ColorReset)
		printItem("Flooded Pixels     : %d (%.2f%%)", f.FloodedPixels, f.FloodedPercent)
		printItem("Non-Flooded Pixels : %d (%.2f%%)", f.NonFloodedPixels, f.NonFloodedPercent)
		printItem("Mask               : %s", f.FloodMaskTIF)
	}
	if n := res.NDVIChange; n != nil {
		fmt.Fprintf(out, "%sNDVI change%s\n", ColorBlue, ColorReset)
		printItem("Gain    : %d (%.2f%%)", n.GainPixels, n.GainPercent)
		printItem("Loss    : %d (%.2f%%)", n.LossPixels, n.LossPercent)
		printItem("Neutral : %d (%.2f%%)", n.NeutralPixels, n.NeutralPercent)
	}
	if s := res.SiteSuitability; s != nil {
		fmt.Fprintf(out, "%sSite suitability%s\n", ColorBlue, ColorReset)
		printItem("Status : %s", s.Status)
		if s.TIF != "" {
			printItem("Mask   : %s", s.TIF)
		}
	}
	for stage, reason := range res.Skipped {
		PrintWarning(fmt.Sprintf("%s skipped: %s", stage, reason))
	}
	for _, e := range res.Errors {
		PrintError(e.Error())
	}
}
