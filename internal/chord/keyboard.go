package chord

import "github.com/satindergrewal/pianochords/internal/theory"

// Key is one physical key of the rendered keyboard.
type Key struct {
	Pitch theory.Pitch
	Black bool
}

// Keyboard is an ordered, low-to-high run of keys. It is never mutated.
type Keyboard []Key

// Range bounds of the standard keyboard.
var (
	LowestKey  = theory.Pitch{Class: theory.C, Octave: 3}
	HighestKey = theory.Pitch{Class: theory.C, Octave: 5}
)

// StandardKeyboard returns the two-octave C3..C5 keyboard (25 keys).
func StandardKeyboard() Keyboard {
	return NewKeyboard(LowestKey, HighestKey)
}

// NewKeyboard returns every chromatic key from lo to hi inclusive.
func NewKeyboard(lo, hi theory.Pitch) Keyboard {
	var kb Keyboard
	for n := lo.Semitone(); n <= hi.Semitone(); n++ {
		p := lo.Transpose(n - lo.Semitone())
		kb = append(kb, Key{Pitch: p, Black: isBlack(p.Class)})
	}
	return kb
}

func isBlack(c theory.PitchClass) bool {
	switch c {
	case theory.CSharp, theory.DSharp, theory.FSharp, theory.GSharp, theory.ASharp:
		return true
	}
	return false
}

// Contains reports whether the exact pitch has a key.
func (kb Keyboard) Contains(p theory.Pitch) bool {
	for _, k := range kb {
		if k.Pitch == p {
			return true
		}
	}
	return false
}

// LowestOf returns the leftmost key of the given pitch class.
func (kb Keyboard) LowestOf(c theory.PitchClass) (theory.Pitch, bool) {
	for _, k := range kb {
		if k.Pitch.Class == c {
			return k.Pitch, true
		}
	}
	return theory.Pitch{}, false
}

// Whites returns the white keys in order.
func (kb Keyboard) Whites() []Key {
	return kb.filter(false)
}

// Blacks returns the black keys in order.
func (kb Keyboard) Blacks() []Key {
	return kb.filter(true)
}

func (kb Keyboard) filter(black bool) []Key {
	var out []Key
	for _, k := range kb {
		if k.Black == black {
			out = append(out, k)
		}
	}
	return out
}

// Pitches returns the pitch of every key in order.
func (kb Keyboard) Pitches() []theory.Pitch {
	out := make([]theory.Pitch, len(kb))
	for i, k := range kb {
		out[i] = k.Pitch
	}
	return out
}
