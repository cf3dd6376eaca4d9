package report

import (
	"errors"
	"fmt"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/forest-guardian/landwatch/internal/raster"
)

var errNoCRS = errors.New("raster has no coordinate reference system")

// Footprint returns the outline of the raster at tifPath in WGS84 as a
// GeoJSON feature carrying props plus its centroid.
func Footprint(tifPath string, props map[string]interface{}) (*geojson.Feature, error) {
	profile, err := raster.ReadProfile(tifPath)
	if err != nil {
		return nil, err
	}
	if profile.CRS == "" {
		return nil, fmt.Errorf("%s: %w", tifPath, errNoCRS)
	}

	c := profile.Corners()
	wkt := fmt.Sprintf("POLYGON((%f %f,%f %f,%f %f,%f %f,%f %f))",
		c[0][0], c[0][1], c[1][0], c[1][1], c[2][0], c[2][1], c[3][0], c[3][1], c[0][0], c[0][1])

	src, err := godal.NewSpatialRefFromWKT(profile.CRS)
	if err != nil {
		return nil, fmt.Errorf("failed to parse raster CRS: %w", err)
	}
	defer src.Close()
	wgs84, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return nil, err
	}
	defer wgs84.Close()

	geom, err := godal.NewGeometryFromWKT(wkt, src)
	if err != nil {
		return nil, fmt.Errorf("failed to build footprint: %w", err)
	}
	defer geom.Close()
	if err := geom.Reproject(wgs84); err != nil {
		return nil, fmt.Errorf("failed to reproject footprint: %w", err)
	}

	gj, err := geom.GeoJSON()
	if err != nil {
		return nil, err
	}
	g, err := geojson.UnmarshalGeometry([]byte(gj))
	if err != nil {
		return nil, fmt.Errorf("failed to decode footprint: %w", err)
	}

	feature := geojson.NewFeature(g.Coordinates)
	for k, v := range props {
		feature.Properties[k] = v
	}
	centroid, area := planar.CentroidArea(g.Coordinates)
	if area > 0 {
		feature.Properties["centroid_lon"] = centroid.X()
		feature.Properties["centroid_lat"] = centroid.Y()
	}
	return feature, nil
}

// WriteFootprint stores features as a FeatureCollection at path.
func WriteFootprint(path string, features ...*geojson.Feature) error {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}
