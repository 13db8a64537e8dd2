// Package tick provides the shared clock signal that drives packet timeouts.
package tick

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-session/pkg/observable"
)

// DefaultInterval is the tick period used when none is configured
const DefaultInterval = time.Second

// Listener receives ticks. Keep a strong reference to it for as long as it
// should fire; the broadcaster only holds it weakly.
type Listener struct {
	fn func(now time.Time)
}

// NewListener wraps fn as a tick listener
func NewListener(fn func(now time.Time)) *Listener {
	return &Listener{fn: fn}
}

// Broadcaster fans one ticker out to all subscribers. The ticker only runs
// while at least one live subscriber exists.
type Broadcaster struct {
	clock    clock.Clock
	interval time.Duration
	log      *logrus.Entry

	listeners *observable.Registry[Listener]

	mu      sync.Mutex
	ticker  *clock.Ticker
	stop    chan struct{}
	running bool
}

// NewBroadcaster creates a broadcaster. A nil clock means the wall clock, a
// non-positive interval means DefaultInterval.
func NewBroadcaster(clk clock.Clock, interval time.Duration) *Broadcaster {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Broadcaster{
		clock:     clk,
		interval:  interval,
		log:       logrus.WithField("scope", "tick"),
		listeners: observable.NewRegistry[Listener](),
	}
}

// Clock returns the time source shared with subscribers
func (b *Broadcaster) Clock() clock.Clock {
	return b.clock
}

// Subscribe registers l and starts the ticker if it was idle
func (b *Broadcaster) Subscribe(l *Listener) {
	b.listeners.Register(l)

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		b.startLocked()
	}
}

// Unsubscribe removes l and stops the ticker when nobody is left
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.listeners.Unregister(l)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running && b.listeners.Len() == 0 {
		b.stopLocked()
	}
}

// Running reports whether the ticker is active
func (b *Broadcaster) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Subscribers returns the number of live subscribers
func (b *Broadcaster) Subscribers() int {
	return b.listeners.Len()
}

func (b *Broadcaster) startLocked() {
	b.ticker = b.clock.Ticker(b.interval)
	b.stop = make(chan struct{})
	b.running = true

	go b.loop(b.ticker, b.stop)
	b.log.Debugf("ticker started (%v)", b.interval)
}

func (b *Broadcaster) stopLocked() {
	b.ticker.Stop()
	close(b.stop)
	b.ticker = nil
	b.stop = nil
	b.running = false
	b.log.Debug("ticker stopped")
}

func (b *Broadcaster) loop(ticker *clock.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			b.listeners.ForEach(func(l *Listener) {
				l.fn(now)
			})

			b.mu.Lock()
			if b.running && b.ticker == ticker && b.listeners.Len() == 0 {
				b.stopLocked()
			}
			b.mu.Unlock()
		}
	}
}
