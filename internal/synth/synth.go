// Package synth renders note previews and chords on an audio graph.
package synth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/satindergrewal/pianochords/internal/audio"
	"github.com/satindergrewal/pianochords/internal/theory"
)

var ErrBusy = errors.New("a chord is already playing")

// Envelope timing and levels.
const (
	PreviewDuration = 800 * time.Millisecond
	PreviewAttack   = 10 * time.Millisecond
	PreviewPeak     = 0.4

	ChordDuration = 3 * time.Second
	ChordAttack   = 20 * time.Millisecond
	ChordDecay    = 300 * time.Millisecond
	VoicePeak     = 0.8
	VoiceSustain  = 0.6
	MasterLevel   = 0.4

	// Floor is the target of every exponential release; it cannot be zero.
	Floor = 0.01

	Timbre = audio.Triangle
)

// Opener constructs the audio engine. It is called on first use and again
// after a failed attempt.
type Opener func() (audio.Graph, error)

// Static returns an Opener for an already-built graph.
func Static(g audio.Graph) Opener {
	return func() (audio.Graph, error) { return g, nil }
}

type Option func(*Synthesizer)

func WithLogger(l *log.Logger) Option {
	return func(s *Synthesizer) { s.log = l }
}

// WithClock replaces the wall clock used by the busy gate.
func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) { s.now = now }
}

type Synthesizer struct {
	mu    sync.Mutex
	open  Opener
	graph audio.Graph
	gate  *Gate
	now   func() time.Time
	log   *log.Logger
}

func New(open Opener, opts ...Option) *Synthesizer {
	s := &Synthesizer{open: open}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = log.Default().WithPrefix("synth")
	}
	s.gate = NewGate(ChordDuration, s.now)
	return s
}

// Gate exposes the chord busy gate, mainly to hook OnIdle.
func (s *Synthesizer) Gate() *Gate { return s.gate }

func (s *Synthesizer) Busy() bool { return s.gate.Busy() }

func (s *Synthesizer) engine() (audio.Graph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph != nil {
		return s.graph, nil
	}
	if s.open == nil {
		return nil, errors.New("no audio engine configured")
	}
	g, err := s.open()
	if err != nil {
		return nil, fmt.Errorf("open audio engine: %w", err)
	}
	s.graph = g
	s.log.Debug("audio engine opened")
	return g, nil
}

// PreviewNote sounds one short note. Previews are never gated and may
// overlap each other and a sounding chord.
func (s *Synthesizer) PreviewNote(p theory.Pitch) error {
	g, err := s.engine()
	if err != nil {
		return err
	}
	now := g.CurrentTime()
	end := now + PreviewDuration.Seconds()

	osc := g.CreateOscillator()
	env := g.CreateGain()
	osc.SetType(Timbre)
	osc.Frequency().SetValueAtTime(p.Frequency(), now)

	env.Gain().SetValueAtTime(0, now)
	env.Gain().LinearRampToValueAtTime(PreviewPeak, now+PreviewAttack.Seconds())
	if err := env.Gain().ExponentialRampToValueAtTime(Floor, end); err != nil {
		return err
	}

	if err := osc.Connect(env); err != nil {
		return err
	}
	if err := env.Connect(g.Destination()); err != nil {
		return err
	}
	if err := osc.Start(now); err != nil {
		return err
	}
	if err := osc.Stop(end); err != nil {
		return err
	}
	s.log.Debug("preview", "note", p, "hz", p.Frequency())
	return nil
}

// PlayChord sounds every note together under a shared master envelope.
// It returns ErrBusy while a previous chord holds the gate. On any other
// failure the gate is released so the next call can try again.
func (s *Synthesizer) PlayChord(notes []theory.Pitch) (err error) {
	if !s.gate.TryAcquire() {
		return ErrBusy
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chord synthesis panicked: %v", r)
		}
		if err != nil {
			s.log.Error("chord playback failed", "err", err)
			s.gate.Release()
		}
	}()

	g, err := s.engine()
	if err != nil {
		return err
	}
	if err := s.scheduleChord(g, notes); err != nil {
		return err
	}
	s.log.Debug("chord", "notes", len(notes), "until", s.gate.Expiry())
	return nil
}

func (s *Synthesizer) scheduleChord(g audio.Graph, notes []theory.Pitch) error {
	if len(notes) == 0 {
		return nil
	}
	now := g.CurrentTime()
	end := now + ChordDuration.Seconds()

	master := g.CreateGain()
	master.Gain().SetValueAtTime(MasterLevel, now)
	if err := master.Gain().ExponentialRampToValueAtTime(Floor, end); err != nil {
		return err
	}

	for _, p := range notes {
		osc := g.CreateOscillator()
		voice := g.CreateGain()
		osc.SetType(Timbre)
		osc.Frequency().SetValueAtTime(p.Frequency(), now)

		v := voice.Gain()
		v.SetValueAtTime(0, now)
		v.LinearRampToValueAtTime(VoicePeak, now+ChordAttack.Seconds())
		v.LinearRampToValueAtTime(VoiceSustain, now+ChordDecay.Seconds())
		if err := v.ExponentialRampToValueAtTime(Floor, end); err != nil {
			return err
		}

		if err := osc.Connect(voice); err != nil {
			return err
		}
		if err := voice.Connect(master); err != nil {
			return err
		}
		if err := osc.Start(now); err != nil {
			return err
		}
		if err := osc.Stop(end); err != nil {
			return err
		}
	}
	return master.Connect(g.Destination())
}
