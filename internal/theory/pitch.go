package theory

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidPitch is returned when a pitch string cannot be parsed.
var ErrInvalidPitch = errors.New("invalid pitch")

// Reference tuning: A4 = 440 Hz, 12-tone equal temperament.
const (
	ReferenceFrequency = 440.0
	ReferenceOctave    = 4
	SemitonesPerOctave = 12
)

// PitchClass is one of the 12 chromatic positions, C = 0 through B = 11.
type PitchClass int

const (
	C PitchClass = iota
	CSharp
	D
	DSharp
	E
	F
	FSharp
	G
	GSharp
	A
	ASharp
	B
)

var classNames = [SemitonesPerOctave]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Name returns the canonical alphabetic spelling (sharps).
func (c PitchClass) Name() string {
	return classNames[c.normalize()]
}

func (c PitchClass) normalize() PitchClass {
	return PitchClass(posMod(int(c), SemitonesPerOctave))
}

// Pitch is a pitch class at a given octave, written "<Name><Octave>" e.g. "D#3".
type Pitch struct {
	Class  PitchClass
	Octave int
}

func (p Pitch) String() string {
	return p.Class.Name() + strconv.Itoa(p.Octave)
}

// Semitone returns the absolute semitone number, with C0 = 0.
func (p Pitch) Semitone() int {
	return p.Octave*SemitonesPerOctave + int(p.Class)
}

// MIDI returns the MIDI note number (C4 = 60).
func (p Pitch) MIDI() int {
	return p.Semitone() + SemitonesPerOctave
}

// Transpose shifts the pitch by n semitones. The octave borrows with floor
// division so negative shifts move down correctly.
func (p Pitch) Transpose(n int) Pitch {
	sum := int(p.Class) + n
	return Pitch{
		Class:  PitchClass(posMod(sum, SemitonesPerOctave)),
		Octave: p.Octave + floorDiv(sum, SemitonesPerOctave),
	}
}

// Frequency returns the equal-tempered frequency in Hz.
func (p Pitch) Frequency() float64 {
	fromA4 := (p.Octave-ReferenceOctave)*SemitonesPerOctave + int(p.Class) - int(A)
	return ReferenceFrequency * math.Pow(2, float64(fromA4)/SemitonesPerOctave)
}

// MustParsePitch is like ParsePitch but panics on error. Intended for static tables.
func MustParsePitch(s string) Pitch {
	p, err := ParsePitch(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePitch parses "<Letter>[#|b]<Octave>". Flat spellings are normalized to
// their sharp equivalent, so "Db4" yields C#4.
func ParsePitch(s string) (Pitch, error) {
	s = strings.TrimSpace(s)
	i := len(s)
	for i > 0 && (s[i-1] >= '0' && s[i-1] <= '9') {
		i--
	}
	if i > 0 && s[i-1] == '-' {
		i--
	}
	if i == 0 || i == len(s) {
		return Pitch{}, fmt.Errorf("%w: %q", ErrInvalidPitch, s)
	}
	class, err := ParseClass(s[:i])
	if err != nil {
		return Pitch{}, fmt.Errorf("%w: %q", ErrInvalidPitch, s)
	}
	octave, err := strconv.Atoi(s[i:])
	if err != nil {
		return Pitch{}, fmt.Errorf("%w: %q", ErrInvalidPitch, s)
	}
	// Cb and B# cross the octave boundary.
	switch s[:i] {
	case "Cb":
		octave--
	case "B#":
		octave++
	}
	return Pitch{Class: class, Octave: octave}, nil
}

// ParseClass parses an alphabetic pitch-class name such as "C", "F#" or "Bb".
func ParseClass(name string) (PitchClass, error) {
	if len(name) == 0 || len(name) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPitch, name)
	}
	var base PitchClass
	switch name[0] {
	case 'C':
		base = C
	case 'D':
		base = D
	case 'E':
		base = E
	case 'F':
		base = F
	case 'G':
		base = G
	case 'A':
		base = A
	case 'B':
		base = B
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPitch, name)
	}
	if len(name) == 1 {
		return base, nil
	}
	switch name[1] {
	case '#':
		return (base + 1).normalize(), nil
	case 'b':
		return (base - 1).normalize(), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPitch, name)
}

// Frequency parses a pitch string and returns its frequency.
func Frequency(s string) (float64, error) {
	p, err := ParsePitch(s)
	if err != nil {
		return 0, err
	}
	return p.Frequency(), nil
}

func posMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

func floorDiv(a, n int) int {
	q := a / n
	if a%n != 0 && (a < 0) != (n < 0) {
		q--
	}
	return q
}
