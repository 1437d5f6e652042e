package session

import (
	"fmt"

	apperrors "github.com/rcesaret/new-caledonia-commune-locator/internal/errors"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

// findPoint returns the slice index of the point with the given ID, or -1.
// Callers must hold s.mu.
func (s *Session) findPoint(id int) int {
	for i := range s.points {
		if s.points[i].ID == id {
			return i
		}
	}
	return -1
}

// AddPoint appends a new user point and returns it. IDs are monotonic within
// the session and never reused, so effect intents referencing a deleted point
// cannot alias a later one.
func (s *Session) AddPoint(pos models.CanonicalPoint, shape models.PointShape, props models.PointProperties) (models.UserPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxPoints > 0 && len(s.points) >= s.maxPoints {
		return models.UserPoint{}, fmt.Errorf("session holds the maximum of %d points", s.maxPoints)
	}

	p := models.UserPoint{
		ID:         s.nextPointID,
		Position:   pos,
		Shape:      shape,
		Visible:    true,
		Properties: props,
	}
	s.nextPointID++
	s.points = append(s.points, p)
	return p, nil
}

// PointUpdate carries the optional fields of a point edit. Nil fields keep
// their current value.
type PointUpdate struct {
	Position   *models.CanonicalPoint
	Shape      *models.PointShape
	Visible    *bool
	Properties *models.PointProperties
}

// UpdatePoint applies the edit and returns the updated point. When the
// position moves, the caller is expected to re-resolve the containing commune
// and pass it through Properties; stale resolution is never patched here.
func (s *Session) UpdatePoint(id int, upd PointUpdate) (models.UserPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findPoint(id)
	if i < 0 {
		return models.UserPoint{}, apperrors.ErrPointNotFound
	}

	p := &s.points[i]
	if upd.Position != nil {
		p.Position = *upd.Position
	}
	if upd.Shape != nil {
		p.Shape = *upd.Shape
	}
	if upd.Visible != nil {
		p.Visible = *upd.Visible
	}
	if upd.Properties != nil {
		p.Properties = *upd.Properties
	}
	return *p, nil
}

// DeletePoint removes the point. If it was the active selection the selection
// is cleared, and the revert intent for it is returned so the UI does not keep
// a highlight on a ghost.
func (s *Session) DeletePoint(id int) ([]Effect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findPoint(id)
	if i < 0 {
		return nil, apperrors.ErrPointNotFound
	}

	var effects []Effect
	if s.selection.Kind == models.SelectionPoint && s.selection.PointID == id {
		effects = s.revertEffects()
		s.selection = models.NoSelection()
	}
	s.points = append(s.points[:i], s.points[i+1:]...)
	return effects, nil
}

// Point returns a copy of the point with the given ID.
func (s *Session) Point(id int) (models.UserPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.findPoint(id)
	if i < 0 {
		return models.UserPoint{}, apperrors.ErrPointNotFound
	}
	return s.points[i], nil
}

// Points returns a copy of the point list in creation order.
func (s *Session) Points() []models.UserPoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.UserPoint, len(s.points))
	copy(out, s.points)
	return out
}
