package scene

import "time"

// Band numbers as laid out in LISS-III deliveries.
const (
	BandGreen = 2
	BandRed   = 3
	BandNIR   = 4
	BandSWIR  = 5
)

// Product file names written under <scene>/outputs.
const (
	ProductRGB          = "RGB_composite.png"
	ProductFalseColor   = "False_color_composite.png"
	ProductNDVI         = "NDVI.tif"
	ProductNDVIPreview  = "NDVI.png"
	ProductNDWI         = "NDWI.tif"
	ProductNDWIPreview  = "NDWI.png"
	ProductMNDWI        = "MNDWI.tif"
	ProductMNDWIPreview = "MNDWI.png"
)

const OutputsDir = "outputs"

// Scene is one acquisition folder holding raw band files and, once derived,
// its products keyed by file name.
type Scene struct {
	Dir      string
	Date     time.Time
	Bands    map[int]string
	Products map[string]string
}
