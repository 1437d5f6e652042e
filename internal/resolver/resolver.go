// Package resolver answers "which commune contains this point" and "which
// commune matches this name" against the loaded dataset.
package resolver

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

// RegionProvider supplies the current region collection in dataset order.
type RegionProvider interface {
	Regions() ([]models.Region, error)
}

// Resolver resolves canonical points and name queries to communes.
type Resolver struct {
	provider RegionProvider
}

// New creates a resolver over the given region provider.
func New(provider RegionProvider) *Resolver {
	return &Resolver{provider: provider}
}

// ResolveContaining returns the first region in dataset insertion order whose
// geometry contains the point. Overlapping boundaries in messy data can put a
// point inside several regions; the earliest-inserted one always wins. That
// tie break is a contract, not an accident. A nil result with nil error means
// no commune contains the point, a normal negative outcome.
func (r *Resolver) ResolveContaining(ctx context.Context, p models.CanonicalPoint) (*models.Region, error) {
	regions, err := r.provider.Regions()
	if err != nil {
		return nil, err
	}

	for i := range regions {
		if containsPoint(regions[i].Geometry, p) {
			return &regions[i], nil
		}
	}

	return nil, nil
}

// containsPoint is the typed adapter over the containment primitive. The
// primitive works in (lon, lat) axis order, the opposite of the canonical
// convention used everywhere else; the swap happens here and only here.
func containsPoint(g orb.MultiPolygon, p models.CanonicalPoint) bool {
	pt := orb.Point{p.Longitude, p.Latitude}
	if !g.Bound().Contains(pt) {
		return false
	}
	return planar.MultiPolygonContains(g, pt)
}
