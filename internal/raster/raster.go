package raster

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/airbusgeo/godal"
)

var (
	// ErrIO is returned when a raster path is missing or cannot be read or written.
	ErrIO = errors.New("raster i/o error")
	// ErrFormat is returned when a file exists but is not a readable raster.
	ErrFormat = errors.New("invalid raster format")
)

var registerOnce sync.Once

func ensureDrivers() {
	registerOnce.Do(godal.RegisterAll)
}

// Profile is the spatial metadata carried from a source raster to every
// product derived from it.
type Profile struct {
	CRS       string // WKT, empty when the source has none
	Transform [6]float64
	Width     int
	Height    int
	DataType  godal.DataType
	Count     int
	NoData    *float64
}

// Overrides are the only profile fields a derived product may change.
type Overrides struct {
	DataType godal.DataType
	Count    int
}

// With returns a copy of p with the overrides applied. CRS and transform are
// never touched.
func (p Profile) With(o Overrides) Profile {
	out := p
	if o.DataType != godal.Unknown {
		out.DataType = o.DataType
	}
	if o.Count > 0 {
		out.Count = o.Count
	}
	if p.NoData != nil {
		nd := *p.NoData
		out.NoData = &nd
	}
	return out
}

// Raster is a single band grid, indexed [row][col], with its profile.
type Raster struct {
	Data    [][]float64
	Profile Profile
}

func (r *Raster) Width() int  { return r.Profile.Width }
func (r *Raster) Height() int { return r.Profile.Height }

var identityTransform = [6]float64{0, 1, 0, 0, 0, 1}

func open(path string) (*godal.Dataset, error) {
	ensureDrivers()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIO, path, err)
	}
	f.Close()
	ds, err := godal.Open(path, godal.RasterOnly(), godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return errors.New(msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, path, err)
	}
	if ds.Structure().NBands < 1 {
		ds.Close()
		return nil, fmt.Errorf("%w: %s has no bands", ErrFormat, path)
	}
	return ds, nil
}

func readProfile(ds *godal.Dataset) Profile {
	structure := ds.Structure()
	band := ds.Bands()[0]

	transform, err := ds.GeoTransform()
	if err != nil {
		transform = identityTransform
	}

	profile := Profile{
		CRS:       ds.Projection(),
		Transform: transform,
		Width:     structure.SizeX,
		Height:    structure.SizeY,
		DataType:  band.Structure().DataType,
		Count:     structure.NBands,
	}
	if nodata, ok := band.NoData(); ok {
		profile.NoData = &nodata
	}
	return profile
}

// ReadProfile returns the profile of the raster at path without reading pixels.
func ReadProfile(path string) (Profile, error) {
	ds, err := open(path)
	if err != nil {
		return Profile{}, err
	}
	defer ds.Close()
	return readProfile(ds), nil
}

// Corners returns the outer corners of the grid in CRS units, starting at the
// origin and running clockwise for north-up rasters.
func (p Profile) Corners() [4][2]float64 {
	gt := p.Transform
	at := func(col, row float64) [2]float64 {
		return [2]float64{gt[0] + col*gt[1] + row*gt[2], gt[3] + col*gt[4] + row*gt[5]}
	}
	w, h := float64(p.Width), float64(p.Height)
	return [4][2]float64{at(0, 0), at(w, 0), at(w, h), at(0, h)}
}

// Load reads the first band of the raster at path.
func Load(path string) (*Raster, error) {
	ds, err := open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	profile := readProfile(ds)
	data := make([]float64, profile.Width*profile.Height)
	if err := ds.Bands()[0].Read(0, 0, data, profile.Width, profile.Height); err != nil {
		return nil, fmt.Errorf("%w: failed to read raster data from %s: %v", ErrIO, path, err)
	}

	return &Raster{Data: reshape(data, profile.Width, profile.Height), Profile: profile}, nil
}

// LoadResampled reads the first band of the raster at path resampled onto a
// width x height grid. The returned profile keeps the source CRS and origin
// with the pixel size scaled to the new shape.
func LoadResampled(path string, width, height int, alg godal.ResamplingAlg) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target shape %dx%d", width, height)
	}
	ds, err := open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	profile := readProfile(ds)
	srcWidth, srcHeight := profile.Width, profile.Height

	data := make([]float64, width*height)
	err = ds.Bands()[0].Read(0, 0, data, width, height,
		godal.Window(srcWidth, srcHeight),
		godal.Resampling(alg),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to resample %s onto %dx%d: %v", ErrIO, path, width, height, err)
	}

	sx := float64(srcWidth) / float64(width)
	sy := float64(srcHeight) / float64(height)
	profile.Transform[1] *= sx
	profile.Transform[2] *= sy
	profile.Transform[4] *= sx
	profile.Transform[5] *= sy
	profile.Width, profile.Height = width, height

	return &Raster{Data: reshape(data, width, height), Profile: profile}, nil
}

// Save writes grid as a single band GeoTIFF at path using profile with the
// overrides applied. Parent directories are created as needed.
func Save(path string, grid [][]float64, profile Profile, overrides Overrides) error {
	ensureDrivers()

	p := profile.With(overrides)
	if p.Count != 1 {
		return fmt.Errorf("only single band rasters can be written, got count %d", p.Count)
	}
	if len(grid) != p.Height || (p.Height > 0 && len(grid[0]) != p.Width) {
		return fmt.Errorf("grid shape does not match profile %dx%d", p.Width, p.Height)
	}
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("%w: failed to create output folder for %s: %v", ErrIO, path, err)
	}

	ds, err := godal.Create(godal.GTiff, path, 1, p.DataType, p.Width, p.Height)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", ErrIO, path, err)
	}
	if err := write(ds, grid, p); err != nil {
		ds.Close()
		return fmt.Errorf("%w: failed to write %s: %v", ErrIO, path, err)
	}
	if err := ds.Close(); err != nil {
		return fmt.Errorf("%w: failed to flush %s: %v", ErrIO, path, err)
	}
	return nil
}

func write(ds *godal.Dataset, grid [][]float64, p Profile) error {
	if err := ds.SetGeoTransform(p.Transform); err != nil {
		return err
	}
	if p.CRS != "" {
		if err := ds.SetProjection(p.CRS); err != nil {
			return err
		}
	}

	band := ds.Bands()[0]
	if p.NoData != nil && representable(*p.NoData, p.DataType) {
		if err := band.SetNoData(*p.NoData); err != nil {
			return err
		}
	}

	switch p.DataType {
	case godal.Byte:
		buf := make([]uint8, p.Width*p.Height)
		for y, row := range grid {
			for x, v := range row {
				buf[y*p.Width+x] = toByte(v)
			}
		}
		return band.Write(0, 0, buf, p.Width, p.Height)
	case godal.Float32:
		buf := make([]float32, p.Width*p.Height)
		for y, row := range grid {
			for x, v := range row {
				buf[y*p.Width+x] = float32(v)
			}
		}
		return band.Write(0, 0, buf, p.Width, p.Height)
	default:
		return band.Write(0, 0, flatten(grid, p.Width, p.Height), p.Width, p.Height)
	}
}

func toByte(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

func representable(v float64, dt godal.DataType) bool {
	if dt != godal.Byte {
		return true
	}
	return v >= 0 && v <= 255 && v == math.Trunc(v)
}

func reshape(data []float64, width, height int) [][]float64 {
	result := make([][]float64, height)
	for i := range result {
		result[i] = data[i*width : (i+1)*width]
	}
	return result
}

func flatten(grid [][]float64, width, height int) []float64 {
	data := make([]float64, 0, width*height)
	for _, row := range grid {
		data = append(data, row...)
	}
	return data
}

// EPSG returns the WKT of an EPSG code, for building profiles from scratch.
func EPSG(code int) (string, error) {
	ensureDrivers()
	sr, err := godal.NewSpatialRefFromEPSG(code)
	if err != nil {
		return "", fmt.Errorf("unknown EPSG code %d: %w", code, err)
	}
	defer sr.Close()
	return sr.WKT()
}
