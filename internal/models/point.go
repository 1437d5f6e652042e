package models

// CanonicalPoint is a validated (latitude, longitude) pair in decimal degrees.
// Produced by the normalize+validate pipeline and consumed immediately by the
// resolver or attached to a user point; never persisted on its own.
type CanonicalPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PointShape is the marker shape of a user-placed point.
type PointShape string

const (
	ShapeCircle PointShape = "circle"
	ShapeSquare PointShape = "square"
)

// Valid reports whether the shape is one of the supported values.
func (s PointShape) Valid() bool {
	return s == ShapeCircle || s == ShapeSquare
}

// PointProperties carries the user-editable attributes of a point.
// Opacity is a fraction in [0,1].
type PointProperties struct {
	Label              string  `json:"label"`
	Color              string  `json:"color"`
	Opacity            float64 `json:"opacity"`
	ResolvedRegionName string  `json:"resolved_region_name"`
}

// UserPoint is a user-placed marker. IDs are assigned monotonically by the
// owning session and never reused. Moving a point re-resolves its commune.
type UserPoint struct {
	ID         int             `json:"id"`
	Position   CanonicalPoint  `json:"position"`
	Shape      PointShape      `json:"shape"`
	Visible    bool            `json:"visible"`
	Properties PointProperties `json:"properties"`
}

// InputMode selects which of the four coordinate input encodings is active.
type InputMode string

const (
	ModeDecimalPair   InputMode = "decimal_pair"
	ModeDecimalFields InputMode = "decimal_fields"
	ModeDMSFields     InputMode = "dms_fields"
	ModeDMSString     InputMode = "dms_string"

	// ModeMapClick is not a typed encoding; it carries the numeric point of a
	// map click through the same lookup path.
	ModeMapClick InputMode = "map_click"
)

// Valid reports whether the mode is one of the supported encodings.
func (m InputMode) Valid() bool {
	switch m {
	case ModeDecimalPair, ModeDecimalFields, ModeDMSFields, ModeDMSString, ModeMapClick:
		return true
	}
	return false
}

// DMS is a degrees-minutes-seconds decomposition of one axis. Sign travels on
// Degrees; Minutes and Seconds are always non-negative.
type DMS struct {
	Degrees int     `json:"degrees"`
	Minutes int     `json:"minutes"`
	Seconds float64 `json:"seconds"`
}

// RegionStyle is the default polygon style, adjustable at runtime. Deselection
// restores this exact style rather than a rebuilt approximation.
type RegionStyle struct {
	BorderColor string  `json:"border_color"`
	FillColor   string  `json:"fill_color"`
	FillOpacity float64 `json:"fill_opacity"`
	Weight      int     `json:"weight"`
}

// DefaultRegionStyle returns the style a freshly loaded commune polygon gets.
func DefaultRegionStyle() RegionStyle {
	return RegionStyle{
		BorderColor: "#3388ff",
		FillColor:   "#3388ff",
		FillOpacity: 0.2,
		Weight:      2,
	}
}
