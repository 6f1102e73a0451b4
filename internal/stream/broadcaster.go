// Package stream carries rendered PCM to remote listeners over HTTP and
// WebRTC.
package stream

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// listenerBuffer holds ~3 seconds at 20ms/frame, one full chord.
const listenerBuffer = 150

// Broadcaster fans out PCM frames from the synthesis clock to N listeners.
type Broadcaster struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
	log       *log.Logger
}

// Listener receives PCM frames from the broadcaster.
type Listener struct {
	ID    string
	Kind  string // transport, e.g. "http" or "webrtc"
	Since time.Time
	C     chan []int16 // buffered channel of 20ms PCM frames

	done    chan struct{}
	dropped atomic.Uint64
}

// Done is closed when the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} { return l.done }

// Dropped counts frames skipped because the listener fell behind.
func (l *Listener) Dropped() uint64 { return l.dropped.Load() }

// ListenerInfo describes a connected listener.
type ListenerInfo struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Since   time.Time `json:"since"`
	Dropped uint64    `json:"dropped"`
}

// NewBroadcaster creates a broadcaster with no listeners.
func NewBroadcaster(logger *log.Logger) *Broadcaster {
	if logger == nil {
		logger = log.Default()
	}
	return &Broadcaster{
		listeners: make(map[*Listener]struct{}),
		log:       logger,
	}
}

// Subscribe registers a new listener of the given transport kind.
func (b *Broadcaster) Subscribe(kind string) *Listener {
	l := &Listener{
		ID:    uuid.NewString(),
		Kind:  kind,
		Since: time.Now(),
		C:     make(chan []int16, listenerBuffer),
		done:  make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	n := len(b.listeners)
	b.mu.Unlock()
	b.log.Info("listener joined", "id", l.ID, "kind", kind, "total", n)
	return l
}

// Unsubscribe removes a listener and signals it to stop. Calling it twice
// is a no-op.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	_, ok := b.listeners[l]
	delete(b.listeners, l)
	n := len(b.listeners)
	b.mu.Unlock()
	if !ok {
		return
	}
	close(l.done)
	b.log.Info("listener left", "id", l.ID, "kind", l.Kind, "dropped", l.Dropped(), "total", n)
}

// ListenerCount returns the number of active listeners.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Listeners returns a snapshot of the active listeners, oldest first.
func (b *Broadcaster) Listeners() []ListenerInfo {
	b.mu.RLock()
	out := make([]ListenerInfo, 0, len(b.listeners))
	for l := range b.listeners {
		out = append(out, ListenerInfo{ID: l.ID, Kind: l.Kind, Since: l.Since, Dropped: l.Dropped()})
	}
	b.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Since.Before(out[j].Since) })
	return out
}

// Run reads frames from source and fans out to all listeners.
// Slow listeners get frames dropped rather than blocking the broadcast.
func (b *Broadcaster) Run(ctx context.Context, source <-chan []int16) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-source:
			if !ok {
				return
			}
			b.mu.RLock()
			for l := range b.listeners {
				select {
				case l.C <- frame:
				default:
					// listener too slow, drop frame to keep broadcast moving
					l.dropped.Add(1)
				}
			}
			b.mu.RUnlock()
		}
	}
}
