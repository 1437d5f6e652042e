// Package session holds the per-client interaction state: the selection state
// machine, the user point collection, the locate marker slot, and the input
// mode. All transitions return the ordered side-effect intents the UI replays;
// the state itself never reaches into rendering.
package session

import (
	"sync"
	"time"

	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

// LocateMarker is the dropped pin of the most recent coordinate lookup. It is
// independent of the selection machine: replaced wholesale on each lookup,
// explicitly clearable, and it coexists with any selection.
type LocateMarker struct {
	Position   models.CanonicalPoint `json:"position"`
	RegionName string                `json:"region_name,omitempty"`
	Popup      string                `json:"popup,omitempty"`
}

// Session is one client's state. Methods are safe for concurrent use, though
// in practice a session is driven by one browser at a time.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu            sync.Mutex
	lastSeen      time.Time
	selection     models.Selection
	points        []models.UserPoint
	nextPointID   int
	locateMarker  *LocateMarker
	inputMode     models.InputMode
	selectionMode bool
	regionStyle   models.RegionStyle
	maxPoints     int
}

// New creates an idle session.
func New(id string, maxPoints int) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:          id,
		CreatedAt:   now,
		lastSeen:    now,
		selection:   models.NoSelection(),
		nextPointID: 1,
		inputMode:   models.ModeDecimalPair,
		regionStyle: models.DefaultRegionStyle(),
		maxPoints:   maxPoints,
	}
}

// Touch refreshes the TTL clock.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now().UTC()
	s.mu.Unlock()
}

// LastSeen returns the last activity time.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// InputMode returns the active coordinate input encoding.
func (s *Session) InputMode() models.InputMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputMode
}

// SetInputMode switches the active encoding. Values are not converted between
// encodings on switch; the decimal/DMS conversion is an explicit operation.
func (s *Session) SetInputMode(m models.InputMode) {
	s.mu.Lock()
	s.inputMode = m
	s.mu.Unlock()
}

// SelectionMode reports whether map clicks select features instead of
// performing coordinate lookups.
func (s *Session) SelectionMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectionMode
}

// SetSelectionMode toggles click behavior. Orthogonal to the selection state
// itself: disabling the mode does not clear an active selection.
func (s *Session) SetSelectionMode(enabled bool) {
	s.mu.Lock()
	s.selectionMode = enabled
	s.mu.Unlock()
}

// RegionStyle returns the current default polygon style.
func (s *Session) RegionStyle() models.RegionStyle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regionStyle
}

// SetRegionStyle updates the runtime-adjustable default style. Subsequent
// deselections restore this style.
func (s *Session) SetRegionStyle(style models.RegionStyle) {
	s.mu.Lock()
	s.regionStyle = style
	s.mu.Unlock()
}

// Snapshot is a read-only view of the session for API responses.
type Snapshot struct {
	ID            string             `json:"id"`
	CreatedAt     time.Time          `json:"created_at"`
	Selection     models.Selection   `json:"selection"`
	Points        []models.UserPoint `json:"points"`
	LocateMarker  *LocateMarker      `json:"locate_marker,omitempty"`
	InputMode     models.InputMode   `json:"input_mode"`
	SelectionMode bool               `json:"selection_mode"`
	RegionStyle   models.RegionStyle `json:"region_style"`
}

// Snapshot returns a copy of the observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	points := make([]models.UserPoint, len(s.points))
	copy(points, s.points)

	var marker *LocateMarker
	if s.locateMarker != nil {
		m := *s.locateMarker
		marker = &m
	}

	return Snapshot{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		Selection:     s.selection,
		Points:        points,
		LocateMarker:  marker,
		InputMode:     s.inputMode,
		SelectionMode: s.selectionMode,
		RegionStyle:   s.regionStyle,
	}
}
