package dram

import (
	"sync"

	"github.com/sarchlab/dramsim/request"
)

// Stats is the controller's central counter registry. Every collaborator
// that needs to report a number at finalize time registers its own named
// counters here instead of keeping a package-level global, so one map can
// be dumped as the simulation's statistics tree.
type Stats struct {
	mu       sync.Mutex
	counters map[string]uint64
	floats   map[string]float64

	perCoreReadHits      map[int]uint64
	perCoreReadConflicts map[int]uint64
	perCoreReadMisses    map[int]uint64

	readLatencyTotal request.Clk
	readCount        uint64
}

// NewStats creates an empty registry.
func NewStats() *Stats {
	return &Stats{
		counters:             make(map[string]uint64),
		floats:               make(map[string]float64),
		perCoreReadHits:      make(map[int]uint64),
		perCoreReadConflicts: make(map[int]uint64),
		perCoreReadMisses:    make(map[int]uint64),
	}
}

// Add increments a named counter by delta.
func (s *Stats) Add(name string, delta uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[name] += delta
}

// AddFloat increments a named float accumulator by delta, used for
// queue-length integrals and other running sums.
func (s *Stats) AddFloat(name string, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.floats[name] += delta
}

// Get returns the current value of a named counter.
func (s *Stats) Get(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counters[name]
}

// GetFloat returns the current value of a named float accumulator.
func (s *Stats) GetFloat(name string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.floats[name]
}

func (s *Stats) recordAccess(sourceID int, hit, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case hit:
		s.counters["row_hits"]++
		s.perCoreReadHits[sourceID]++
	case open:
		s.counters["row_conflicts"]++
		s.perCoreReadConflicts[sourceID]++
	default:
		s.counters["row_misses"]++
		s.perCoreReadMisses[sourceID]++
	}
}

func (s *Stats) recordRequestType(t request.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t {
	case request.TypeRead:
		s.counters["reads"]++
	case request.TypeWrite:
		s.counters["writes"]++
	case request.TypePartialWrite:
		s.counters["partial_writes"]++
	}
}

func (s *Stats) recordReadLatency(latency request.Clk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.readLatencyTotal += latency
	s.readCount++
}

// AverageReadLatency returns the mean cycles from a read's arrival to its
// completion, or 0 if no read has completed yet. Reads forwarded from the
// write buffer carry no arrival cycle and are not counted.
func (s *Stats) AverageReadLatency() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.averageReadLatencyLocked()
}

// PerCoreReadHits returns the accumulated row-hit count for sourceID.
func (s *Stats) PerCoreReadHits(sourceID int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.perCoreReadHits[sourceID]
}

// Snapshot dumps every counter and float accumulator as a single
// name-to-value tree, the shape finalize-time reporting (cmd/dramsim's
// summary, statsserver's JSON endpoint) emits directly.
func (s *Stats) Snapshot() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]interface{}, len(s.counters)+len(s.floats)+2)
	for k, v := range s.counters {
		out[k] = v
	}
	for k, v := range s.floats {
		out[k] = v
	}
	out["average_read_latency"] = s.averageReadLatencyLocked()

	perCore := make(map[int]uint64, len(s.perCoreReadHits))
	for src := range s.perCoreReadHits {
		perCore[src] = s.perCoreReadHits[src]
	}
	out["per_core_read_hits"] = perCore

	return out
}

func (s *Stats) averageReadLatencyLocked() float64 {
	if s.readCount == 0 {
		return 0
	}

	return float64(s.readLatencyTotal) / float64(s.readCount)
}
