package synth

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satindergrewal/pianochords/internal/audio"
	"github.com/satindergrewal/pianochords/internal/theory"
)

// --- Fake graph ---

type call struct {
	kind  string
	value float64
	at    float64
}

type fakeParam struct{ calls []call }

func (p *fakeParam) SetValueAtTime(v, at float64) {
	p.calls = append(p.calls, call{"set", v, at})
}

func (p *fakeParam) LinearRampToValueAtTime(v, at float64) {
	p.calls = append(p.calls, call{"linear", v, at})
}

func (p *fakeParam) ExponentialRampToValueAtTime(v, at float64) error {
	if v == 0 {
		return audio.ErrInvalidRampTarget
	}
	p.calls = append(p.calls, call{"exp", v, at})
	return nil
}

func (p *fakeParam) ValueAt(float64) float64 { return 0 }

type fakeNode struct {
	g    *fakeGraph
	outs []audio.Node
}

func (n *fakeNode) Connect(dst audio.Node) error {
	if n.g.failConnect {
		return errors.New("connect refused")
	}
	n.outs = append(n.outs, dst)
	return nil
}

type fakeOsc struct {
	fakeNode
	wave        audio.Waveform
	freq        fakeParam
	start, stop float64
}

func (o *fakeOsc) SetType(w audio.Waveform) { o.wave = w }
func (o *fakeOsc) Frequency() audio.Param  { return &o.freq }
func (o *fakeOsc) Start(at float64) error  { o.start = at; return nil }
func (o *fakeOsc) Stop(at float64) error   { o.stop = at; return nil }

type fakeGain struct {
	fakeNode
	gain fakeParam
}

func (g *fakeGain) Gain() audio.Param { return &g.gain }

type fakeGraph struct {
	mu          sync.Mutex
	now         float64
	oscs        []*fakeOsc
	gains       []*fakeGain
	dest        fakeNode
	failConnect bool
	panicOnGain bool
}

func newFakeGraph() *fakeGraph {
	g := &fakeGraph{now: 1.5}
	g.dest.g = g
	return g
}

func (g *fakeGraph) CurrentTime() float64 { return g.now }

func (g *fakeGraph) CreateOscillator() audio.OscillatorNode {
	g.mu.Lock()
	defer g.mu.Unlock()
	o := &fakeOsc{fakeNode: fakeNode{g: g}}
	g.oscs = append(g.oscs, o)
	return o
}

func (g *fakeGraph) CreateGain() audio.GainNode {
	if g.panicOnGain {
		panic("gain node exhausted")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	n := &fakeGain{fakeNode: fakeNode{g: g}}
	g.gains = append(g.gains, n)
	return n
}

func (g *fakeGraph) Destination() audio.Node { return &g.dest }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func quiet() Option {
	return WithLogger(log.New(io.Discard))
}

func chordC() []theory.Pitch {
	return []theory.Pitch{
		theory.MustParsePitch("C3"),
		theory.MustParsePitch("E3"),
		theory.MustParsePitch("G3"),
	}
}

// --- Preview ---

func TestPreviewEnvelope(t *testing.T) {
	g := newFakeGraph()
	s := New(Static(g), quiet())

	require.NoError(t, s.PreviewNote(theory.MustParsePitch("A4")))
	require.Len(t, g.oscs, 1)
	require.Len(t, g.gains, 1)

	osc := g.oscs[0]
	assert.Equal(t, audio.Triangle, osc.wave)
	assert.Equal(t, []call{{"set", 440, 1.5}}, osc.freq.calls)
	assert.Equal(t, 1.5, osc.start)
	assert.InDelta(t, 2.3, osc.stop, 1e-9)

	env := g.gains[0].gain.calls
	require.Len(t, env, 3)
	assert.Equal(t, call{"set", 0, 1.5}, env[0])
	assert.Equal(t, "linear", env[1].kind)
	assert.Equal(t, 0.4, env[1].value)
	assert.InDelta(t, 1.51, env[1].at, 1e-9)
	assert.Equal(t, "exp", env[2].kind)
	assert.Equal(t, 0.01, env[2].value)
	assert.InDelta(t, 2.3, env[2].at, 1e-9)

	assert.Equal(t, []audio.Node{g.gains[0]}, osc.outs)
	assert.Equal(t, []audio.Node{&g.dest}, g.gains[0].outs)
}

func TestPreviewNotGated(t *testing.T) {
	g := newFakeGraph()
	s := New(Static(g), quiet())

	require.NoError(t, s.PlayChord(chordC()))
	require.True(t, s.Busy())
	require.NoError(t, s.PreviewNote(theory.MustParsePitch("C4")))
	require.NoError(t, s.PreviewNote(theory.MustParsePitch("C4")))
	assert.Len(t, g.oscs, 5)
}

func TestPreviewPropagatesErrors(t *testing.T) {
	g := newFakeGraph()
	g.failConnect = true
	s := New(Static(g), quiet())
	assert.Error(t, s.PreviewNote(theory.MustParsePitch("C4")))
}

// --- Chord ---

func TestChordEnvelope(t *testing.T) {
	g := newFakeGraph()
	s := New(Static(g), quiet())

	require.NoError(t, s.PlayChord(chordC()))
	require.Len(t, g.oscs, 3)
	require.Len(t, g.gains, 4) // master + one per voice

	master := g.gains[0]
	assert.Equal(t, []call{{"set", 0.4, 1.5}, {"exp", 0.01, 4.5}}, master.gain.calls)
	assert.Equal(t, []audio.Node{&g.dest}, master.outs)

	for i, osc := range g.oscs {
		voice := g.gains[i+1]
		assert.Equal(t, audio.Triangle, osc.wave)
		assert.Equal(t, 1.5, osc.start)
		assert.Equal(t, 4.5, osc.stop)
		assert.Equal(t, []audio.Node{voice}, osc.outs)
		assert.Equal(t, []audio.Node{master}, voice.outs)

		env := voice.gain.calls
		require.Len(t, env, 4)
		assert.Equal(t, call{"set", 0, 1.5}, env[0])
		assert.Equal(t, 0.8, env[1].value)
		assert.InDelta(t, 1.52, env[1].at, 1e-9)
		assert.Equal(t, 0.6, env[2].value)
		assert.InDelta(t, 1.8, env[2].at, 1e-9)
		assert.Equal(t, call{"exp", 0.01, 4.5}, env[3])
	}
	assert.InDelta(t, chordC()[1].Frequency(), g.oscs[1].freq.calls[0].value, 1e-9)
}

func TestBusyGateScenario(t *testing.T) {
	g := newFakeGraph()
	clock := newFakeClock()
	s := New(Static(g), quiet(), WithClock(clock.Now))

	require.NoError(t, s.PlayChord(chordC()))
	built := len(g.oscs)

	clock.Advance(time.Second)
	err := s.PlayChord(chordC())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Len(t, g.oscs, built, "busy call must not build a graph")
	assert.True(t, s.Busy())

	clock.Advance(2 * time.Second)
	assert.False(t, s.Busy())
	require.NoError(t, s.PlayChord(chordC()))
	assert.Len(t, g.oscs, 2*built)
}

func TestChordFailureReleasesGate(t *testing.T) {
	g := newFakeGraph()
	g.failConnect = true
	s := New(Static(g), quiet())

	assert.Error(t, s.PlayChord(chordC()))
	assert.False(t, s.Busy())

	g.failConnect = false
	assert.NoError(t, s.PlayChord(chordC()))
	assert.True(t, s.Busy())
}

func TestChordPanicRecovered(t *testing.T) {
	g := newFakeGraph()
	g.panicOnGain = true
	s := New(Static(g), quiet())

	err := s.PlayChord(chordC())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gain node exhausted")
	assert.False(t, s.Busy())
}

// --- Engine ---

func TestEngineOpenedLazilyAndRetried(t *testing.T) {
	g := newFakeGraph()
	opens := 0
	fail := true
	s := New(func() (audio.Graph, error) {
		opens++
		if fail {
			return nil, errors.New("device unavailable")
		}
		return g, nil
	}, quiet())
	assert.Equal(t, 0, opens)

	assert.Error(t, s.PlayChord(chordC()))
	assert.False(t, s.Busy())
	assert.Error(t, s.PreviewNote(theory.MustParsePitch("C4")))
	assert.Equal(t, 2, opens)

	fail = false
	require.NoError(t, s.PreviewNote(theory.MustParsePitch("C4")))
	require.NoError(t, s.PlayChord(chordC()))
	assert.Equal(t, 3, opens)
}

func TestRendersThroughRealContext(t *testing.T) {
	ctx := audio.NewContext(log.New(io.Discard))
	s := New(Static(ctx), quiet())
	require.NoError(t, s.PlayChord(chordC()))

	ctx.RenderFrame()
	frame := ctx.RenderFrame()
	var loud bool
	for _, v := range frame {
		if v != 0 {
			loud = true
			break
		}
	}
	assert.True(t, loud, "chord should be audible after attack")
	assert.Equal(t, 1, ctx.Voices())
}

// --- Gate ---

func TestGateStates(t *testing.T) {
	clock := newFakeClock()
	gate := NewGate(3*time.Second, clock.Now)
	assert.Equal(t, Idle, gate.State())
	assert.True(t, gate.Expiry().IsZero())

	require.True(t, gate.TryAcquire())
	assert.Equal(t, Playing, gate.State())
	assert.Equal(t, clock.Now().Add(3*time.Second), gate.Expiry())
	assert.False(t, gate.TryAcquire())

	gate.Release()
	assert.Equal(t, Idle, gate.State())
	assert.True(t, gate.TryAcquire())
	gate.Release()
}

func TestGateOnIdleFromTimer(t *testing.T) {
	gate := NewGate(20*time.Millisecond, nil)
	idle := make(chan struct{}, 1)
	gate.OnIdle(func() { idle <- struct{}{} })

	require.True(t, gate.TryAcquire())
	select {
	case <-idle:
	case <-time.After(2 * time.Second):
		t.Fatal("OnIdle not called after expiry")
	}
	assert.False(t, gate.Busy())
}

func TestGateOnIdleOncePerHold(t *testing.T) {
	clock := newFakeClock()
	gate := NewGate(time.Hour, clock.Now)
	var mu sync.Mutex
	calls := 0
	gate.OnIdle(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	require.True(t, gate.TryAcquire())
	clock.Advance(time.Hour)
	assert.False(t, gate.Busy())
	assert.False(t, gate.Busy())
	gate.Release()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}
