package coordparse

import (
	"math"

	apperrors "github.com/rcesaret/new-caledonia-commune-locator/internal/errors"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

// Geographic bounds, inclusive on both ends.
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// Validate confirms a (lat, lon) pair is finite and within Earth bounds.
// Fails closed: out-of-range values are never clamped, always rejected.
func Validate(lat, lon float64) (models.CanonicalPoint, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) {
		return models.CanonicalPoint{}, apperrors.RangeError{Axis: "latitude", Value: lat, Min: MinLatitude, Max: MaxLatitude}
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return models.CanonicalPoint{}, apperrors.RangeError{Axis: "longitude", Value: lon, Min: MinLongitude, Max: MaxLongitude}
	}
	if lat < MinLatitude || lat > MaxLatitude {
		return models.CanonicalPoint{}, apperrors.RangeError{Axis: "latitude", Value: lat, Min: MinLatitude, Max: MaxLatitude}
	}
	if lon < MinLongitude || lon > MaxLongitude {
		return models.CanonicalPoint{}, apperrors.RangeError{Axis: "longitude", Value: lon, Min: MinLongitude, Max: MaxLongitude}
	}
	return models.CanonicalPoint{Latitude: lat, Longitude: lon}, nil
}
