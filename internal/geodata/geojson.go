package geodata

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/logger"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

// DecodeFeatureCollection parses a GeoJSON FeatureCollection into regions.
// The region name is read from nameProp, falling back to "name". Features
// without a usable name or polygon geometry are skipped with a warning; an
// empty result is a valid degraded dataset, not an error.
func DecodeFeatureCollection(data []byte, nameProp string) ([]models.Region, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}

	regions := make([]models.Region, 0, len(fc.Features))
	for i, f := range fc.Features {
		name := f.Properties.MustString(nameProp, "")
		if name == "" {
			name = f.Properties.MustString("name", "")
		}
		if name == "" {
			logger.Warn("Skipping unnamed feature", "feature_index", i)
			continue
		}

		mp, ok := toMultiPolygon(f.Geometry)
		if !ok || len(mp) == 0 {
			logger.Warn("Skipping feature without polygon geometry", "name", name)
			continue
		}

		regions = append(regions, models.Region{
			Name:     name,
			Geometry: mp,
			Index:    len(regions),
		})
	}

	return regions, nil
}

// toMultiPolygon normalizes Polygon and MultiPolygon geometries; anything else
// is rejected.
func toMultiPolygon(g orb.Geometry) (orb.MultiPolygon, bool) {
	switch geom := g.(type) {
	case orb.MultiPolygon:
		return geom, true
	case orb.Polygon:
		return orb.MultiPolygon{geom}, true
	default:
		return nil, false
	}
}
