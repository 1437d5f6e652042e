package session

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ExportGeoJSON renders the session's user points as a GeoJSON
// FeatureCollection. Hidden points are included with "visible": false so a
// re-import restores the session faithfully.
func (s *Session) ExportGeoJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	for _, p := range s.points {
		f := geojson.NewFeature(orb.Point{p.Position.Longitude, p.Position.Latitude})
		f.Properties["id"] = p.ID
		f.Properties["shape"] = string(p.Shape)
		f.Properties["visible"] = p.Visible
		if p.Properties.Label != "" {
			f.Properties["label"] = p.Properties.Label
		}
		if p.Properties.Color != "" {
			f.Properties["color"] = p.Properties.Color
		}
		if p.Properties.Opacity != 0 {
			f.Properties["opacity"] = p.Properties.Opacity
		}
		if p.Properties.ResolvedRegionName != "" {
			f.Properties["commune"] = p.Properties.ResolvedRegionName
		}
		fc.Append(f)
	}
	return fc.MarshalJSON()
}
