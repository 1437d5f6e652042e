package models

// SelectionKind enumerates the selection state machine's states.
type SelectionKind string

const (
	SelectionNone   SelectionKind = "none"
	SelectionPoint  SelectionKind = "point"
	SelectionRegion SelectionKind = "region"
)

// Selection holds at most one active selection: a user point or a commune
// polygon, never both. Activating one clears the other.
type Selection struct {
	Kind        SelectionKind `json:"kind"`
	PointID     int           `json:"point_id,omitempty"`
	RegionName  string        `json:"region_name,omitempty"`
	RegionIndex int           `json:"region_index,omitempty"`
}

// NoSelection returns the idle selection state.
func NoSelection() Selection {
	return Selection{Kind: SelectionNone}
}

// SelectedPoint returns a selection of the given user point.
func SelectedPoint(id int) Selection {
	return Selection{Kind: SelectionPoint, PointID: id}
}

// SelectedRegion returns a selection of the given commune. Regions are
// referenced by name plus dataset index since names are not guaranteed unique.
func SelectedRegion(name string, index int) Selection {
	return Selection{Kind: SelectionRegion, RegionName: name, RegionIndex: index}
}

// IsNone reports whether nothing is selected.
func (s Selection) IsNone() bool {
	return s.Kind == SelectionNone || s.Kind == ""
}
