package game

import (
	"slices"
	"sync"
	"time"
)

// TickSource wakes subscribers once per scheduling opportunity.
// Subscribe returns a cancel func that is idempotent and may be called
// from inside the subscriber.
type TickSource interface {
	Subscribe(fn func()) (cancel func())
}

// Ticker is a TickSource backed by time.Ticker, one goroutine per subscriber.
// It stands in for a display refresh callback.
type Ticker struct {
	Interval time.Duration
}

// NewTicker creates a ticker waking at fps times per second
func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = 60
	}
	return &Ticker{Interval: time.Second / time.Duration(fps)}
}

// Subscribe starts calling fn on every tick until cancelled
func (t *Ticker) Subscribe(fn func()) func() {
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		ticker := time.NewTicker(t.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// A cancel that races a pending tick wins
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() { once.Do(func() { close(stop) }) }
}

// ManualTicker is a TickSource that only fires when Tick is called.
// Subscribers run synchronously on the caller's goroutine.
type ManualTicker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

// NewManualTicker creates a ticker with no subscribers
func NewManualTicker() *ManualTicker {
	return &ManualTicker{subs: make(map[int]func())}
}

// Subscribe registers fn for subsequent Tick calls
func (m *ManualTicker) Subscribe(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Tick fires every current subscriber once, in subscription order
func (m *ManualTicker) Tick() {
	m.mu.Lock()
	ids := make([]int, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	slices.Sort(ids)
	for _, id := range ids {
		m.mu.Lock()
		fn, ok := m.subs[id]
		m.mu.Unlock()
		if ok {
			fn()
		}
	}
}

// Subscribers returns the number of active subscriptions
func (m *ManualTicker) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}
