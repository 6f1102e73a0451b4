package chord

import (
	"strings"

	"github.com/satindergrewal/pianochords/internal/theory"
)

// Display is a shape transposed and placed on a keyboard. It is rebuilt from
// scratch whenever the selection changes.
type Display struct {
	Shape  Shape
	Root   string // Latin root label the offset came from
	Offset int
	Notes  []theory.Pitch
	// Fallback is set when the transposed root had no key and notes were
	// transposed without octave remapping.
	Fallback bool
}

// OffsetOf returns the semitone distance of a Latin root label above C.
func OffsetOf(rootLabel string) (int, error) {
	c, err := theory.ParseLatin(rootLabel)
	if err != nil {
		return 0, err
	}
	return int(c), nil
}

// Fit transposes shape by offset semitones (taken mod 12) and maps every note
// onto kb, anchoring the root on its lowest key. Notes that land off the
// keyboard take the lowest key of their pitch class. Fit is a pure function.
func Fit(shape Shape, offset int, kb Keyboard) Display {
	offset = ((offset % theory.SemitonesPerOctave) + theory.SemitonesPerOctave) % theory.SemitonesPerOctave
	d := Display{Shape: shape, Offset: offset, Notes: make([]theory.Pitch, len(shape.Notes))}
	if len(shape.Notes) == 0 {
		return d
	}

	root := shape.Root().Transpose(offset)
	anchor, ok := kb.LowestOf(root.Class)
	if !ok {
		d.Fallback = true
		for i, n := range shape.Notes {
			d.Notes[i] = n.Transpose(offset)
		}
		return d
	}
	octaveDiff := anchor.Octave - root.Octave

	for i, n := range shape.Notes {
		transposed := n.Transpose(offset)
		candidate := theory.Pitch{Class: transposed.Class, Octave: transposed.Octave + octaveDiff}
		if !kb.Contains(candidate) {
			if lowest, ok := kb.LowestOf(transposed.Class); ok {
				candidate = lowest
			} else {
				candidate = transposed
			}
		}
		d.Notes[i] = candidate
	}
	return d
}

// Contains reports whether p is one of the chord's notes.
func (d Display) Contains(p theory.Pitch) bool {
	for _, n := range d.Notes {
		if n == p {
			return true
		}
	}
	return false
}

// Symbol returns the transposed chord symbol.
func (d Display) Symbol() string {
	return TransposedSymbol(d.Shape.Symbol, d.rootLabel())
}

// Name returns the transposed, cleaned display name.
func (d Display) Name() string {
	return CleanName(TransposedName(d.Shape.Name, d.rootLabel()))
}

// LatinNotes joins the Latin labels of the notes for the info panel.
func (d Display) LatinNotes() string {
	labels := make([]string, len(d.Notes))
	for i, n := range d.Notes {
		labels[i] = n.Class.Latin()
	}
	return strings.Join(labels, " - ")
}

// NoteNames returns the canonical note strings, e.g. "F3".
func (d Display) NoteNames() []string {
	out := make([]string, len(d.Notes))
	for i, n := range d.Notes {
		out[i] = n.String()
	}
	return out
}

func (d Display) rootLabel() string {
	if d.Root != "" {
		return d.Root
	}
	return theory.PitchClass(d.Offset).Latin()
}
