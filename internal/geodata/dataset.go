// Package geodata loads and holds the commune polygon dataset. Loading is
// all-or-nothing: readers either see the previous complete snapshot or the new
// one, never a partially filled dataset.
package geodata

import (
	"sync"
	"time"

	apperrors "github.com/rcesaret/new-caledonia-commune-locator/internal/errors"
	"github.com/rcesaret/new-caledonia-commune-locator/internal/models"
)

// Snapshot is one complete load of the dataset. Regions keep their insertion
// order; that order is the resolver's tie-break policy.
type Snapshot struct {
	Regions  []models.Region
	Source   string
	Fallback bool
	LoadedAt time.Time
}

// Status describes the dataset for health and UI reporting.
type Status struct {
	Loaded      bool      `json:"loaded"`
	Degraded    bool      `json:"degraded"`
	Fallback    bool      `json:"fallback"`
	Source      string    `json:"source,omitempty"`
	RegionCount int       `json:"region_count"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
}

// Dataset is the shared holder for the current snapshot.
type Dataset struct {
	mu       sync.RWMutex
	snap     *Snapshot
	degraded bool
}

// NewDataset returns an empty dataset; lookups fail with ErrDataUnavailable
// until the first successful load.
func NewDataset() *Dataset {
	return &Dataset{}
}

// Swap installs a new snapshot and clears the degraded flag.
func (d *Dataset) Swap(snap *Snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap = snap
	d.degraded = false
}

// MarkDegraded records that every load attempt failed and no fallback was
// available. Coordinate parsing stays functional; resolution reports
// unavailable.
func (d *Dataset) MarkDegraded() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.degraded = true
}

// Snapshot returns the current snapshot, or ErrDataUnavailable before the
// first successful load.
func (d *Dataset) Snapshot() (*Snapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.snap == nil {
		return nil, apperrors.ErrDataUnavailable
	}
	return d.snap, nil
}

// Regions returns the loaded regions in dataset order.
func (d *Dataset) Regions() ([]models.Region, error) {
	snap, err := d.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Regions, nil
}

// Status reports the current load state.
func (d *Dataset) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	st := Status{Degraded: d.degraded}
	if d.snap != nil {
		st.Loaded = true
		st.Fallback = d.snap.Fallback
		st.Source = d.snap.Source
		st.RegionCount = len(d.snap.Regions)
		st.LoadedAt = d.snap.LoadedAt
	}
	return st
}
