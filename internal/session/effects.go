package session

import "github.com/rcesaret/new-caledonia-commune-locator/internal/models"

// EffectKind enumerates the render intents the core hands to the UI layer.
// The core never touches the map itself; it emits an ordered effect list and
// the UI collaborator replays it.
type EffectKind string

const (
	EffectRevertPointStyle   EffectKind = "revert_point_style"
	EffectResetRegionStyle   EffectKind = "reset_region_style"
	EffectHighlightPoint     EffectKind = "highlight_point"
	EffectHighlightRegion    EffectKind = "highlight_region"
	EffectShowLocateMarker   EffectKind = "show_locate_marker"
	EffectRemoveLocateMarker EffectKind = "remove_locate_marker"
	EffectCenterView         EffectKind = "center_view"
	EffectOpenPopup          EffectKind = "open_popup"
)

// Effect is one render intent. Only the fields relevant to its kind are set.
// ResetRegionStyle carries the live default style so the UI restores exactly
// what the user configured, not a rebuilt approximation.
type Effect struct {
	Kind        EffectKind             `json:"kind"`
	PointID     int                    `json:"point_id,omitempty"`
	RegionName  string                 `json:"region_name,omitempty"`
	RegionIndex int                    `json:"region_index,omitempty"`
	Point       *models.CanonicalPoint `json:"point,omitempty"`
	Style       *models.RegionStyle    `json:"style,omitempty"`
	Popup       string                 `json:"popup,omitempty"`
}
