package synth

import (
	"sync"
	"time"
)

// State is the busy gate's phase.
type State int

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// Gate admits one chord at a time. A held gate returns to Idle when its
// expiry passes, either when the backing timer fires or when the clock is
// next consulted, whichever happens first.
type Gate struct {
	mu       sync.Mutex
	dur      time.Duration
	now      func() time.Time
	state    State
	expiry   time.Time
	timer    *time.Timer
	onIdle   func()
	acquired uint64 // bumps per acquire so stale timers are ignored
}

// NewGate returns an idle gate that holds for d after each acquire.
// A nil clock uses time.Now.
func NewGate(d time.Duration, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{dur: d, now: now}
}

// OnIdle registers a hook run (outside the lock) whenever the gate
// returns to Idle.
func (g *Gate) OnIdle(fn func()) {
	g.mu.Lock()
	g.onIdle = fn
	g.mu.Unlock()
}

// TryAcquire moves Idle to Playing and reports whether it did.
func (g *Gate) TryAcquire() bool {
	g.mu.Lock()
	hook := g.expireLocked()
	if g.state == Playing {
		g.mu.Unlock()
		run(hook)
		return false
	}
	g.state = Playing
	g.expiry = g.now().Add(g.dur)
	g.acquired++
	gen := g.acquired
	g.timer = time.AfterFunc(g.dur, func() { g.fire(gen) })
	g.mu.Unlock()
	run(hook)
	return true
}

// Release returns the gate to Idle immediately.
func (g *Gate) Release() {
	g.mu.Lock()
	if g.state != Playing {
		g.mu.Unlock()
		return
	}
	hook := g.idleLocked()
	g.mu.Unlock()
	run(hook)
}

// Busy reports whether a chord is holding the gate.
func (g *Gate) Busy() bool {
	return g.State() == Playing
}

func (g *Gate) State() State {
	g.mu.Lock()
	hook := g.expireLocked()
	s := g.state
	g.mu.Unlock()
	run(hook)
	return s
}

// Expiry returns when the current hold ends. Zero when idle.
func (g *Gate) Expiry() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Idle {
		return time.Time{}
	}
	return g.expiry
}

func (g *Gate) fire(gen uint64) {
	g.mu.Lock()
	if g.state != Playing || gen != g.acquired {
		g.mu.Unlock()
		return
	}
	hook := g.idleLocked()
	g.mu.Unlock()
	run(hook)
}

func (g *Gate) expireLocked() func() {
	if g.state == Playing && !g.now().Before(g.expiry) {
		return g.idleLocked()
	}
	return nil
}

func (g *Gate) idleLocked() func() {
	g.state = Idle
	g.expiry = time.Time{}
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	return g.onIdle
}

func run(fn func()) {
	if fn != nil {
		fn()
	}
}
