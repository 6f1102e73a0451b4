package audio

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Context is a real-time synthesis graph rendered into 20ms PCM frames.
// Its clock is the number of samples rendered so far, so scheduled events
// line up with the audio that listeners hear.
type Context struct {
	mu       sync.Mutex
	position int64 // samples per channel rendered so far
	dest     *destination
	volume   float64
	prevVol  float64

	frameCh chan []int16
	log     *log.Logger
}

// NewContext creates an idle context. Call Run to start the clock.
func NewContext(logger *log.Logger) *Context {
	if logger == nil {
		logger = log.Default()
	}
	c := &Context{
		volume:  1,
		prevVol: 1,
		frameCh: make(chan []int16, 100),
		log:     logger,
	}
	c.dest = &destination{ctx: c}
	return c
}

// CurrentTime returns the graph clock in seconds.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.position) / SampleRate
}

func (c *Context) CreateOscillator() OscillatorNode {
	return &oscillator{ctx: c, frequency: newParam(c, 440)}
}

func (c *Context) CreateGain() GainNode {
	return &gain{ctx: c, gain: newParam(c, 1)}
}

func (c *Context) Destination() Node {
	return c.dest
}

// SetVolume sets the output scale, clamped to [0, 1]. The change glides
// across the next frame.
func (c *Context) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	c.mu.Lock()
	c.volume = v
	c.mu.Unlock()
}

// Voices returns the number of live sources connected to the destination.
func (c *Context) Voices() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.dest.inputs)
}

// Frames returns the channel of outgoing PCM frames (20ms each).
func (c *Context) Frames() <-chan []int16 {
	return c.frameCh
}

// RenderFrame advances the clock by one frame and returns interleaved
// stereo samples.
func (c *Context) RenderFrame() []int16 {
	c.mu.Lock()
	defer c.mu.Unlock()

	frame := make([]int16, FrameSamples)
	for i := 0; i < FrameSize; i++ {
		t := float64(c.position+int64(i)) / SampleRate
		vol := c.prevVol + (c.volume-c.prevVol)*Smoothstep(float64(i)/FrameSize)
		s := ToSample(c.dest.sample(t) * vol)
		for ch := 0; ch < Channels; ch++ {
			frame[i*Channels+ch] = s
		}
	}
	c.prevVol = c.volume
	c.position += FrameSize
	c.dest.inputs = prune(c.dest.inputs, c.now())
	return frame
}

// Run renders frames at real-time rate until ctx is cancelled.
func (c *Context) Run(ctx context.Context) {
	defer close(c.frameCh)

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	c.log.Info("audio clock started", "rate", SampleRate, "frame", FrameDuration)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("audio clock stopped", "at", c.CurrentTime())
			return
		case <-ticker.C:
		}

		frame := c.RenderFrame()
		select {
		case c.frameCh <- frame:
		case <-ctx.Done():
			return
		default:
			// nobody draining, drop the frame so the clock keeps real time
		}
	}
}
