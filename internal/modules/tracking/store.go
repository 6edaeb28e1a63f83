package tracking

import (
	"sync"
	"time"

	"fleet-tracking/internal/models"
)

// reportRing is the bounded recent-report history used for speed
// smoothing. It is a smoothing window, not an audit trail; reports older
// than the window are discarded.
type reportRing struct {
	buf  []models.PositionReport
	next int
	n    int
}

func newReportRing(size int) *reportRing {
	if size < 1 {
		size = 1
	}
	return &reportRing{buf: make([]models.PositionReport, size)}
}

func (r *reportRing) push(rep models.PositionReport) {
	r.buf[r.next] = rep
	r.next = (r.next + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
}

// snapshot returns the buffered reports oldest first.
func (r *reportRing) snapshot() []models.PositionReport {
	out := make([]models.PositionReport, 0, r.n)
	start := r.next - r.n
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < r.n; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// shipmentEntry is the per-shipment mutable record. All writes happen
// under mu, so an ingest (update + recompute + deviation check) is atomic
// with respect to readers.
type shipmentEntry struct {
	mu      sync.RWMutex
	state   models.LiveState
	history *reportRing
	eta     models.ETAEstimate

	// Deviation state machine.
	deviation      *models.DeviationRecord // open record, nil when on route
	deviationSince time.Time               // first over-threshold sample of the current episode
	lastCrossKM    float64

	// One-shot system event markers.
	sentInTransit      bool
	sentOutForDelivery bool
	sentStaleAlert     bool
}

// Store holds the live tracking state for every shipment the engine has
// seen. Entries are created on first report or explicit start and never
// deleted; deactivation only clears the active flag.
type Store struct {
	mu          sync.RWMutex
	entries     map[string]*shipmentEntry
	historySize int
}

// NewStore creates a store whose per-shipment history rings hold
// historySize reports.
func NewStore(historySize int) *Store {
	if historySize < 1 {
		historySize = 10
	}
	return &Store{
		entries:     make(map[string]*shipmentEntry),
		historySize: historySize,
	}
}

// entry returns the shipment's entry, creating it if needed.
func (s *Store) entry(shipmentID string) *shipmentEntry {
	s.mu.RLock()
	e, ok := s.entries[shipmentID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[shipmentID]; ok {
		return e
	}
	e = &shipmentEntry{
		history: newReportRing(s.historySize),
		state: models.LiveState{
			ShipmentID: shipmentID,
			Active:     true,
		},
	}
	s.entries[shipmentID] = e
	return e
}

// lookup returns the entry without creating one.
func (s *Store) lookup(shipmentID string) (*shipmentEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[shipmentID]
	return e, ok
}

// Get returns a snapshot of the shipment's live state.
func (s *Store) Get(shipmentID string) (models.LiveState, bool) {
	e, ok := s.lookup(shipmentID)
	if !ok {
		return models.LiveState{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state, true
}

// GetETA returns a snapshot of the current ETA estimate.
func (s *Store) GetETA(shipmentID string) (models.ETAEstimate, bool) {
	e, ok := s.lookup(shipmentID)
	if !ok {
		return models.ETAEstimate{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.eta.ShipmentID == "" {
		return models.ETAEstimate{ShipmentID: shipmentID, Unknown: true}, true
	}
	return e.eta, true
}

// GetMonitoring returns the deviation projection for dashboards. The
// route score is 100 for a vehicle on its route, decreasing linearly with
// the current off-route distance.
func (s *Store) GetMonitoring(shipmentID string, now time.Time) (models.RouteMonitoring, bool) {
	e, ok := s.lookup(shipmentID)
	if !ok {
		return models.RouteMonitoring{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	mon := models.RouteMonitoring{ShipmentID: shipmentID}
	if e.deviation != nil {
		mon.DeviationDistanceKM = e.deviation.DistanceKM
		mon.DeviationTimeMin = e.deviation.DurationMin(now)
	}
	score := 100 - e.lastCrossKM*10
	if score < 0 {
		score = 0
	}
	mon.RouteScore = score
	return mon, true
}

// Deactivate clears the active flag, retaining the entry for history.
// It reports whether the shipment was known.
func (s *Store) Deactivate(shipmentID string) bool {
	e, ok := s.lookup(shipmentID)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Active = false
	return true
}

// LastTimestamp returns the timestamp of the last accepted report.
func (s *Store) LastTimestamp(shipmentID string) (time.Time, bool) {
	e, ok := s.lookup(shipmentID)
	if !ok {
		return time.Time{}, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Position.Timestamp, true
}

// shipmentIDs returns all known shipment ids; used by the staleness sweep.
func (s *Store) shipmentIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}
