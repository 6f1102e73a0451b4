package audio

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrNotConnectable    = errors.New("node does not accept input")
	ErrInvalidRampTarget = errors.New("exponential ramp target must be non-zero")
	ErrInvalidTime       = errors.New("invalid schedule time")
	ErrInvalidState      = errors.New("invalid node state")
)

// source is anything that produces a signal for a sink.
type source interface {
	sample(t float64) float64
	done(t float64) bool
	upstream(n source) bool
}

// sink accepts connections.
type sink interface {
	owner() *Context
	attach(s source)
}

type automation int

const (
	setValue automation = iota
	linearRamp
	exponentialRamp
)

type paramEvent struct {
	kind  automation
	value float64
	at    float64
}

// param implements Param with Web Audio style automation: a ramp runs from
// the previous event's time and value to its own.
type param struct {
	ctx    *Context
	def    float64
	events []paramEvent
}

func newParam(ctx *Context, def float64) *param {
	return &param{ctx: ctx, def: def}
}

func (p *param) insert(ev paramEvent) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].at > ev.at })
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
}

func (p *param) SetValueAtTime(value, at float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(paramEvent{kind: setValue, value: value, at: at})
}

func (p *param) LinearRampToValueAtTime(value, at float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(paramEvent{kind: linearRamp, value: value, at: at})
}

func (p *param) ExponentialRampToValueAtTime(value, at float64) error {
	if value == 0 || math.IsNaN(value) {
		return fmt.Errorf("%w: %v", ErrInvalidRampTarget, value)
	}
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	p.insert(paramEvent{kind: exponentialRamp, value: value, at: at})
	return nil
}

func (p *param) ValueAt(t float64) float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.valueAt(t)
}

func (p *param) valueAt(t float64) float64 {
	v, t0 := p.def, 0.0
	for _, ev := range p.events {
		if t < ev.at {
			switch ev.kind {
			case linearRamp:
				if ev.at <= t0 {
					return ev.value
				}
				return v + (ev.value-v)*(t-t0)/(ev.at-t0)
			case exponentialRamp:
				// A ramp from zero or across a sign change holds the start value.
				if v == 0 || v*ev.value < 0 || ev.at <= t0 {
					return v
				}
				return v * math.Pow(ev.value/v, (t-t0)/(ev.at-t0))
			default:
				return v
			}
		}
		v, t0 = ev.value, ev.at
	}
	return v
}

type oscillator struct {
	ctx       *Context
	wave      Waveform
	frequency *param
	start     float64
	stop      float64
	started   bool
	stopped   bool
}

func (o *oscillator) SetType(w Waveform) {
	o.ctx.mu.Lock()
	o.wave = w
	o.ctx.mu.Unlock()
}

func (o *oscillator) Frequency() Param { return o.frequency }

func (o *oscillator) Start(at float64) error {
	if at < 0 || math.IsNaN(at) {
		return fmt.Errorf("%w: start %v", ErrInvalidTime, at)
	}
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	if o.started {
		return fmt.Errorf("%w: oscillator already started", ErrInvalidState)
	}
	o.started, o.start = true, at
	return nil
}

func (o *oscillator) Stop(at float64) error {
	if at < 0 || math.IsNaN(at) {
		return fmt.Errorf("%w: stop %v", ErrInvalidTime, at)
	}
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	if !o.started {
		return fmt.Errorf("%w: oscillator not started", ErrInvalidState)
	}
	o.stopped, o.stop = true, at
	return nil
}

func (o *oscillator) Connect(dst Node) error {
	return connect(o.ctx, o, dst)
}

func (o *oscillator) sample(t float64) float64 {
	if !o.started || t < o.start || (o.stopped && t >= o.stop) {
		return 0
	}
	phase := o.frequency.valueAt(t) * (t - o.start)
	return waveform(o.wave, phase-math.Floor(phase))
}

func (o *oscillator) done(t float64) bool {
	return o.stopped && t >= o.stop
}

func (o *oscillator) upstream(n source) bool { return source(o) == n }

// waveform evaluates one period at x in [0, 1). Every shape starts at zero
// and rises, like a sine.
func waveform(w Waveform, x float64) float64 {
	switch w {
	case Square:
		if x < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		if x < 0.5 {
			return 2 * x
		}
		return 2*x - 2
	case Triangle:
		switch {
		case x < 0.25:
			return 4 * x
		case x < 0.75:
			return 2 - 4*x
		default:
			return 4*x - 4
		}
	default:
		return math.Sin(2 * math.Pi * x)
	}
}

type gain struct {
	ctx      *Context
	gain     *param
	inputs   []source
	hadInput bool
}

func (g *gain) Gain() Param { return g.gain }

func (g *gain) Connect(dst Node) error {
	return connect(g.ctx, g, dst)
}

func (g *gain) owner() *Context { return g.ctx }

func (g *gain) attach(s source) {
	g.inputs = append(g.inputs, s)
	g.hadInput = true
}

func (g *gain) sample(t float64) float64 {
	if len(g.inputs) == 0 {
		return 0
	}
	var sum float64
	for _, in := range g.inputs {
		sum += in.sample(t)
	}
	return sum * g.gain.valueAt(t)
}

// done is true once every input has finished and been pruned.
func (g *gain) done(t float64) bool {
	g.inputs = prune(g.inputs, t)
	return g.hadInput && len(g.inputs) == 0
}

func (g *gain) upstream(n source) bool {
	if source(g) == n {
		return true
	}
	for _, in := range g.inputs {
		if in.upstream(n) {
			return true
		}
	}
	return false
}

type destination struct {
	ctx    *Context
	inputs []source
}

func (d *destination) Connect(Node) error {
	return fmt.Errorf("%w: destination has no output", ErrNotConnectable)
}

func (d *destination) owner() *Context { return d.ctx }

func (d *destination) attach(s source) {
	d.inputs = append(d.inputs, s)
}

func (d *destination) sample(t float64) float64 {
	var sum float64
	for _, in := range d.inputs {
		sum += in.sample(t)
	}
	return sum
}

func prune(inputs []source, t float64) []source {
	live := inputs[:0]
	for _, in := range inputs {
		if !in.done(t) {
			live = append(live, in)
		}
	}
	return live
}

func connect(ctx *Context, src source, dst Node) error {
	s, ok := dst.(sink)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotConnectable, dst)
	}
	if s.owner() != ctx {
		return fmt.Errorf("%w: node belongs to another context", ErrNotConnectable)
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if d, ok := dst.(source); ok && src.upstream(d) {
		return fmt.Errorf("%w: connection would create a cycle", ErrNotConnectable)
	}
	s.attach(src)
	return nil
}
