package delivery

import (
	"fmt"
	"strings"

	"github.com/forest-guardian/landwatch/internal/notification"
)

// Summary is a short human readable account of the run.
func (r PipelineResult) Summary() string {
	if r.Earlier == nil || r.Later == nil {
		return "no comparison pair"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Compared %s with %s.", r.Earlier.Name, r.Later.Name)
	if r.Flood != nil {
		fmt.Fprintf(&b, " Flooded: %d px (%.2f%%).", r.Flood.FloodedPixels, r.Flood.FloodedPercent)
	}
	if r.NDVIChange != nil {
		fmt.Fprintf(&b, " NDVI gain %.2f%%, loss %.2f%%, neutral %.2f%%.",
			r.NDVIChange.GainPercent, r.NDVIChange.LossPercent, r.NDVIChange.NeutralPercent)
	}
	if r.SiteSuitability != nil {
		fmt.Fprintf(&b, " Site suitability: %s.", r.SiteSuitability.Status)
	}
	return b.String()
}

func (r PipelineResult) DiscordFields() []notification.DiscordField {
	var fields []notification.DiscordField
	if r.Flood != nil {
		fields = append(fields,
			notification.DiscordField{Name: "Flooded", Value: fmt.Sprintf("%d px (%.2f%%)", r.Flood.FloodedPixels, r.Flood.FloodedPercent), Inline: true},
			notification.DiscordField{Name: "Non-Flooded", Value: fmt.Sprintf("%d px (%.2f%%)", r.Flood.NonFloodedPixels, r.Flood.NonFloodedPercent), Inline: true},
		)
	}
	if r.NDVIChange != nil {
		fields = append(fields, notification.DiscordField{
			Name:  "NDVI change",
			Value: fmt.Sprintf("gain %.2f%% / loss %.2f%% / neutral %.2f%%", r.NDVIChange.GainPercent, r.NDVIChange.LossPercent, r.NDVIChange.NeutralPercent),
		})
	}
	if r.SiteSuitability != nil {
		fields = append(fields, notification.DiscordField{Name: "Site suitability", Value: r.SiteSuitability.Status, Inline: true})
	}
	for _, e := range r.Errors {
		fields = append(fields, notification.DiscordField{Name: "Failed: " + e.Stage, Value: e.Err.Error()})
	}
	return fields
}
