package acquisition

import (
	"sync"
	"time"
)

// Ticket identifies one attempt; only the holder of the newest ticket may
// commit a terminal state
type Ticket struct {
	Generation uint64
	AttemptID  string
}

// Store owns the single AcquisitionState. Every attempt takes a ticket in
// Start; Commit with an outdated ticket is discarded, so a slow attempt can
// never overwrite the result of a newer one.
type Store struct {
	mu          sync.Mutex
	state       State
	generation  uint64
	now         func() time.Time
	subscribers map[int]chan State
	nextSubID   int
}

// NewStore creates a store in the Idle state
func NewStore() *Store {
	return &Store{
		state:       Initial(),
		now:         time.Now,
		subscribers: make(map[int]chan State),
	}
}

// Snapshot returns the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation returns the newest ticket generation handed out
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Start begins a new attempt and moves the state to Loading
func (s *Store) Start(attemptID string) (Ticket, State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = Begin(s.state, attemptID, s.now())
	s.publishLocked()
	return Ticket{Generation: s.generation, AttemptID: attemptID}, s.state
}

// Succeed commits a successful result for ticket t
func (s *Store) Succeed(t Ticket, r Result) (State, bool) {
	return s.commit(t, func(prev State, now time.Time) State {
		return Succeed(prev, r.Current, r.Forecast, now)
	})
}

// Fail commits a failure for ticket t
func (s *Store) Fail(t Ticket, err *Error) (State, bool) {
	return s.commit(t, func(prev State, now time.Time) State {
		return Fail(prev, err, now)
	})
}

// commit applies the transition when t is still the newest ticket. It
// returns the state the transition produced (even when discarded, so the
// caller can report its own outcome) and whether it was stored.
func (s *Store) commit(t Ticket, transition func(State, time.Time) State) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt := s.state
	attempt.AttemptID = t.AttemptID
	next := transition(attempt, s.now())

	if t.Generation != s.generation {
		return next, false
	}

	s.state = next
	s.publishLocked()
	return next, true
}

// Subscribe returns a channel receiving every stored state, starting with
// the current one. A subscriber that falls behind only sees the newest
// state. Call the returned func to unsubscribe.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++

	ch := make(chan State, 1)
	ch <- s.state
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

func (s *Store) publishLocked() {
	for _, ch := range s.subscribers {
		select {
		case ch <- s.state:
		default:
			// Drop the stale value and replace it with the newest.
			select {
			case <-ch:
			default:
			}
			ch <- s.state
		}
	}
}
