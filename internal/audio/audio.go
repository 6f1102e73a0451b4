package audio

import "time"

const (
	SampleRate    = 48000
	Channels      = 2
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond
	FrameSize     = 960                  // samples per channel per 20ms frame
	FrameSamples  = FrameSize * Channels // total interleaved samples per frame
	FrameBytes    = FrameSamples * 2     // bytes per frame (int16 = 2 bytes)
)

// Waveform selects the shape an oscillator produces.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Triangle
)

func (w Waveform) String() string {
	switch w {
	case Square:
		return "square"
	case Sawtooth:
		return "sawtooth"
	case Triangle:
		return "triangle"
	default:
		return "sine"
	}
}

// Param is an automatable value scheduled against the graph clock (seconds).
type Param interface {
	SetValueAtTime(value, at float64)
	LinearRampToValueAtTime(value, at float64)
	// ExponentialRampToValueAtTime fails with ErrInvalidRampTarget for a zero target.
	ExponentialRampToValueAtTime(value, at float64) error
	ValueAt(t float64) float64
}

// Node is any unit of the synthesis graph.
type Node interface {
	// Connect routes this node's output into dst. Only gains and the
	// destination accept input.
	Connect(dst Node) error
}

// OscillatorNode generates a periodic tone.
type OscillatorNode interface {
	Node
	SetType(w Waveform)
	Frequency() Param
	Start(at float64) error
	Stop(at float64) error
}

// GainNode scales the sum of its inputs.
type GainNode interface {
	Node
	Gain() Param
}

// Graph is the capability a synthesizer needs from an audio output device.
type Graph interface {
	CurrentTime() float64
	CreateOscillator() OscillatorNode
	CreateGain() GainNode
	Destination() Node
}
