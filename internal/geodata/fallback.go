package geodata

import (
	_ "embed"
	"fmt"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

// Embedded coarse commune boundaries, used when every configured source fails.
// Simplified outlines only; good enough to keep lookups answering while the
// real dataset is unreachable.
//
//go:embed data/communes.geojson
var fallbackGeoJSON []byte

// LoadFallback decodes the embedded dataset.
func LoadFallback() ([]models.Region, error) {
	regions, err := DecodeFeatureCollection(fallbackGeoJSON, "nom")
	if err != nil {
		return nil, fmt.Errorf("embedded dataset: %w", err)
	}
	return regions, nil
}
