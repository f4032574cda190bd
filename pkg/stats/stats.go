package stats

import (
	"container/list"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/pliu/rankset/pkg/multiset"
)

// Stats tracks numeric values in a sliding window and can produce summaries.
// It serializes all access to its multiset, so it is safe for concurrent use.
type Stats struct {
	mu         sync.Mutex
	values     *multiset.Multiset[int64]
	window     *list.List
	windowSize time.Duration
	clock      clock.Clock
	sum        int64
}

// NewStats creates a Stats with a real clock. The options configure the
// underlying multiset.
func NewStats(windowSize time.Duration, opts ...multiset.Option) *Stats {
	return NewStatsWithClock(windowSize, clock.New(), opts...)
}

func NewStatsWithClock(windowSize time.Duration, clk clock.Clock, opts ...multiset.Option) *Stats {
	return &Stats{
		values:     multiset.New[int64](opts...),
		window:     list.New(),
		windowSize: windowSize,
		clock:      clk,
	}
}

type measurement struct {
	timestamp time.Time
	value     int64
}

// Add records value. It fails with multiset.ErrCapacityExceeded when the
// window already holds the maximum number of distinct values; expired
// values are evicted first.
func (s *Stats) Add(value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	s.cleanup(now)
	if err := s.values.Insert(value); err != nil {
		return err
	}
	s.window.PushBack(&measurement{timestamp: now, value: value})
	s.sum += value
	return nil
}

func (s *Stats) Average() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.values.Len()
	if count == 0 {
		return 0, false
	}
	return float64(s.sum) / float64(count), true
}

// Percentile returns the nearest-rank value for each requested percentile.
func (s *Stats) Percentile(percentiles []float64) ([]int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(percentiles) == 0 {
		return nil, false
	}
	for _, p := range percentiles {
		if p < 0 || p > 100 {
			return nil, false
		}
	}

	count := s.values.Len()
	if count == 0 {
		return nil, false
	}

	results := make([]int64, 0, len(percentiles))
	for _, p := range percentiles {
		index := int(float64(count-1) * (p / 100.0))
		e, ok := s.values.Select(index)
		if !ok {
			return nil, false
		}
		results = append(results, e.Key())
	}
	return results, true
}

// Rank returns how many values in the window are strictly smaller than value.
func (s *Stats) Rank(value int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.RankOf(value)
}

// Fraction returns the share of values in the window strictly smaller than
// value.
func (s *Stats) Fraction(value int64) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.values.Len()
	if count == 0 {
		return 0, false
	}
	return float64(s.values.RankOf(value)) / float64(count), true
}

func (s *Stats) Min() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.values.Min()
	if !ok {
		return 0, false
	}
	return e.Key(), true
}

func (s *Stats) Max() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.values.Max()
	if !ok {
		return 0, false
	}
	return e.Key(), true
}

// Expire drops values that have left the window. Add does this on its own,
// so it only matters for windows that stop receiving values.
func (s *Stats) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanup(s.clock.Now())
}

func (s *Stats) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Len()
}

// Values returns the values in the window in ascending order.
func (s *Stats) Values() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Keys()
}

// Merge adds other's window to s. Values rejected by s's capacity limit are
// dropped and the first such error is returned.
func (s *Stats) Merge(other *Stats) error {
	if other == nil {
		return nil
	}
	if s == other {
		return nil
	}

	// Grab other's state by copying its window.
	other.mu.Lock()
	otherLen := other.window.Len()
	if otherLen == 0 {
		other.mu.Unlock()
		return nil
	}
	measurements := make([]measurement, 0, otherLen)
	for e := other.window.Front(); e != nil; e = e.Next() {
		m := e.Value.(*measurement)
		measurements = append(measurements, *m)
	}
	other.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	accepted := measurements[:0]
	for _, m := range measurements {
		if err := s.values.Insert(m.value); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.sum += m.value
		accepted = append(accepted, m)
	}
	s.mergeMeasurements(accepted)
	s.cleanup(s.clock.Now())
	return firstErr
}

func (s *Stats) mergeMeasurements(ms []measurement) {
	if len(ms) == 0 {
		return
	}
	if s.window.Len() == 0 {
		for i := range ms {
			m := ms[i]
			s.window.PushBack(&measurement{timestamp: m.timestamp, value: m.value})
		}
		return
	}

	newList := list.New()
	existing := s.window.Front()
	idx := 0

	for existing != nil && idx < len(ms) {
		em := existing.Value.(*measurement)
		if ms[idx].timestamp.Before(em.timestamp) {
			m := ms[idx]
			newList.PushBack(&measurement{timestamp: m.timestamp, value: m.value})
			idx++
		} else {
			newList.PushBack(existing.Value)
			existing = existing.Next()
		}
	}

	for ; idx < len(ms); idx++ {
		m := ms[idx]
		newList.PushBack(&measurement{timestamp: m.timestamp, value: m.value})
	}

	for ; existing != nil; existing = existing.Next() {
		newList.PushBack(existing.Value)
	}

	s.window = newList
}

// cleanup removes measurements that are older than the window size.
func (s *Stats) cleanup(now time.Time) {
	for e := s.window.Front(); e != nil; e = s.window.Front() {
		m := e.Value.(*measurement)
		if now.Sub(m.timestamp) > s.windowSize {
			s.values.Erase(m.value)
			s.sum -= m.value
			s.window.Remove(e)
		} else {
			// The list is sorted by time, so we can stop here.
			break
		}
	}
}
