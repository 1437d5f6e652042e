package models

import "github.com/paulmach/orb"

// Region is an immutable commune record. Name is the display identifier;
// uniqueness is not enforced. Index is the insertion position in the loaded
// dataset and establishes the deterministic tie-break order for containment.
type Region struct {
	Name     string           `json:"name"`
	Geometry orb.MultiPolygon `json:"-"`
	Index    int              `json:"index"`
}

// Bound returns the bounding box of the region's geometry, used as a cheap
// prefilter before the exact containment test.
func (r Region) Bound() orb.Bound {
	return r.Geometry.Bound()
}
