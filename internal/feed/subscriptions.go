package feed

import (
	"sync"

	"main/internal/model"
)

// subscriptions tracks every instrument the caller asked for so the
// connection can replay the full set after a reconnect.
type subscriptions struct {
	mu      sync.Mutex
	order   []model.Instrument
	present map[model.Instrument]struct{}
}

func newSubscriptions() *subscriptions {
	return &subscriptions{
		present: make(map[model.Instrument]struct{}),
	}
}

// Add registers instruments, skipping duplicates, and returns the
// newly added ones in insertion order.
func (s *subscriptions) Add(instruments []model.Instrument) []model.Instrument {
	s.mu.Lock()
	added := make([]model.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		if _, ok := s.present[inst]; ok {
			continue
		}
		s.present[inst] = struct{}{}
		s.order = append(s.order, inst)
		added = append(added, inst)
	}
	s.mu.Unlock()
	return added
}

// All returns a copy of every remembered instrument in insertion order.
func (s *subscriptions) All() []model.Instrument {
	s.mu.Lock()
	out := make([]model.Instrument, len(s.order))
	copy(out, s.order)
	s.mu.Unlock()
	return out
}

// Clear drops all remembered instruments.
func (s *subscriptions) Clear() {
	s.mu.Lock()
	s.order = s.order[:0]
	for inst := range s.present {
		delete(s.present, inst)
	}
	s.mu.Unlock()
}

// Count returns the number of remembered instruments.
func (s *subscriptions) Count() int {
	s.mu.Lock()
	n := len(s.order)
	s.mu.Unlock()
	return n
}
