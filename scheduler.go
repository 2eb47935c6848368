package carousel

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/teranos/carousel/clock"
)

// TimerID identifies one scheduled timer. IDs are never reused, so an ID also
// works as a generation tag: a Fired message whose ID is no longer current is stale.
type TimerID uint64

// Timer tags.
const (
	TagAutoplay    = "autoplay"
	TagManualPause = "manual-pause"
	TagFrame       = "frame"
)

// Fired is delivered through the scheduler's mailbox when a timer comes due.
type Fired struct {
	ID  TimerID
	Tag string
	At  time.Time
}

// Scheduler owns every timer of one carousel instance.
//
// Timers fire on clock goroutines but never touch carousel state: they only post
// a Fired message into the mailbox. The host event loop drains the mailbox (see
// Listen) so all mutations happen on a single logical thread. Close stops every
// outstanding timer, one-shot or repeating, and releases any blocked listener.
type Scheduler struct {
	clock clock.Clock

	mu     sync.Mutex
	next   TimerID
	timers map[TimerID]*scheduled
	queue  []Fired
	closed bool

	signal chan struct{} // capacity 1, nudges a waiting listener
	done   chan struct{}
}

type scheduled struct {
	tag    string
	every  time.Duration // zero for one-shot timers
	handle clock.Timer
}

// NewScheduler creates a scheduler on the given clock.
func NewScheduler(c clock.Clock) *Scheduler {
	if c == nil {
		c = clock.System()
	}
	return &Scheduler{
		clock:  c,
		timers: make(map[TimerID]*scheduled),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Now returns the scheduler clock's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// After schedules a one-shot timer. It returns 0 once the scheduler is closed.
func (s *Scheduler) After(d time.Duration, tag string) TimerID {
	return s.schedule(d, 0, tag)
}

// Every schedules a repeating timer with period d.
func (s *Scheduler) Every(d time.Duration, tag string) TimerID {
	return s.schedule(d, d, tag)
}

func (s *Scheduler) schedule(d, every time.Duration, tag string) TimerID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}

	s.next++
	id := s.next
	t := &scheduled{tag: tag, every: every}
	s.timers[id] = t
	t.handle = s.clock.AfterFunc(d, func() { s.fire(id) })
	return id
}

// Cancel stops a timer. Cancelling an unknown or finished timer is a no-op.
func (s *Scheduler) Cancel(id TimerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.handle.Stop()
		delete(s.timers, id)
	}
}

// Pending returns the number of live timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Scheduler) fire(id TimerID) {
	s.mu.Lock()
	t, ok := s.timers[id]
	if !ok || s.closed {
		s.mu.Unlock()
		return
	}
	if t.every > 0 {
		t.handle = s.clock.AfterFunc(t.every, func() { s.fire(id) })
	} else {
		delete(s.timers, id)
	}
	s.queue = append(s.queue, Fired{ID: id, Tag: t.tag, At: s.clock.Now()})
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Poll returns the oldest undelivered message without blocking.
func (s *Scheduler) Poll() (Fired, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 || s.closed {
		return Fired{}, false
	}
	f := s.queue[0]
	s.queue = s.queue[1:]
	return f, true
}

// Listen returns a command that blocks until a timer fires and yields its Fired
// message. The host must issue a new Listen after each delivered message. After
// Close the command returns nil, which bubbletea discards.
func (s *Scheduler) Listen() tea.Cmd {
	return func() tea.Msg {
		for {
			if f, ok := s.Poll(); ok {
				return f
			}
			select {
			case <-s.signal:
			case <-s.done:
				return nil
			}
		}
	}
}

// Close stops every timer and drops undelivered messages. It is idempotent.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, t := range s.timers {
		t.handle.Stop()
		delete(s.timers, id)
	}
	s.queue = nil
	close(s.done)
}

// Closed reports whether Close has been called.
func (s *Scheduler) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
