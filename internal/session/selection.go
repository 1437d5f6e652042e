package session

import (
	apperrors "github.com/rcesaret/new-caledonia-commune-locator/internal/errors"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

// revertEffects returns the intents that restore the current selection's
// default visuals. Every transition runs these first, so at most one entity is
// ever highlighted and no highlight dangles.
func (s *Session) revertEffects() []Effect {
	switch s.selection.Kind {
	case models.SelectionPoint:
		return []Effect{{Kind: EffectRevertPointStyle, PointID: s.selection.PointID}}
	case models.SelectionRegion:
		style := s.regionStyle
		return []Effect{{
			Kind:        EffectResetRegionStyle,
			RegionName:  s.selection.RegionName,
			RegionIndex: s.selection.RegionIndex,
			Style:       &style,
		}}
	default:
		return nil
	}
}

// SelectPoint makes the given user point the active selection.
func (s *Session) SelectPoint(id int) ([]Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findPoint(id) < 0 {
		return nil, apperrors.ErrPointNotFound
	}

	effects := s.revertEffects()
	s.selection = models.SelectedPoint(id)
	effects = append(effects, Effect{Kind: EffectHighlightPoint, PointID: id})
	return effects, nil
}

// SelectRegion makes the given commune the active selection.
func (s *Session) SelectRegion(name string, index int) []Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	effects := s.revertEffects()
	s.selection = models.SelectedRegion(name, index)
	effects = append(effects, Effect{Kind: EffectHighlightRegion, RegionName: name, RegionIndex: index})
	return effects
}

// ClearSelection returns to the idle state, restoring the deselected entity's
// default style.
func (s *Session) ClearSelection() []Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	effects := s.revertEffects()
	s.selection = models.NoSelection()
	return effects
}

// Selection returns the current selection state.
func (s *Session) Selection() models.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// SetLocateMarker replaces the locate pin wholesale and recenters the view on
// it. The selection state is untouched.
func (s *Session) SetLocateMarker(p models.CanonicalPoint, regionName, popup string) []Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	var effects []Effect
	if s.locateMarker != nil {
		effects = append(effects, Effect{Kind: EffectRemoveLocateMarker})
	}
	s.locateMarker = &LocateMarker{Position: p, RegionName: regionName, Popup: popup}

	pt := p
	effects = append(effects,
		Effect{Kind: EffectShowLocateMarker, Point: &pt, RegionName: regionName, Popup: popup},
		Effect{Kind: EffectCenterView, Point: &pt},
	)
	if popup != "" {
		effects = append(effects, Effect{Kind: EffectOpenPopup, Point: &pt, Popup: popup})
	}
	return effects
}

// ClearLocateMarker removes the locate pin if present.
func (s *Session) ClearLocateMarker() []Effect {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locateMarker == nil {
		return nil
	}
	s.locateMarker = nil
	return []Effect{{Kind: EffectRemoveLocateMarker}}
}

// LocateMarker returns a copy of the current locate pin, or nil.
func (s *Session) LocateMarker() *LocateMarker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locateMarker == nil {
		return nil
	}
	m := *s.locateMarker
	return &m
}
