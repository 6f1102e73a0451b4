package theory

import (
	"errors"
	"fmt"
)

// ErrUnknownLabel is returned for a Latin label outside the solfège alphabet.
var ErrUnknownLabel = errors.New("unknown note label")

var latinNames = [SemitonesPerOctave]string{"Do", "Do#", "Re", "Re#", "Mi", "Fa", "Fa#", "Sol", "Sol#", "La", "La#", "Si"}

// rootLabels is the picker order, enharmonic spellings included.
var rootLabels = []string{"Do", "Do#", "Reb", "Re", "Re#", "Mib", "Mi", "Fa", "Fa#", "Solb", "Sol", "Sol#", "Lab", "La", "La#", "Sib", "Si"}

// latinToAlpha covers every label in rootLabels. Flats stay flats.
var latinToAlpha = map[string]string{
	"Do": "C", "Do#": "C#", "Reb": "Db", "Re": "D", "Re#": "D#", "Mib": "Eb",
	"Mi": "E", "Fa": "F", "Fa#": "F#", "Solb": "Gb", "Sol": "G", "Sol#": "G#",
	"Lab": "Ab", "La": "A", "La#": "A#", "Sib": "Bb", "Si": "B",
}

var alphaToLatin = func() map[string]string {
	m := make(map[string]string, len(latinToAlpha))
	for latin, alpha := range latinToAlpha {
		m[alpha] = latin
	}
	return m
}()

// Latin returns the canonical Latin label.
func (c PitchClass) Latin() string {
	return latinNames[c.normalize()]
}

// RootLabels returns the Latin labels offered for root selection.
func RootLabels() []string {
	out := make([]string, len(rootLabels))
	copy(out, rootLabels)
	return out
}

// ToLatinLabel converts an alphabetic name to its Latin label. A trailing
// octave is dropped. Unknown input is returned unchanged.
func ToLatinLabel(name string) string {
	if p, err := ParsePitch(name); err == nil {
		return p.Class.Latin()
	}
	if latin, ok := alphaToLatin[name]; ok {
		return latin
	}
	return name
}

// ToAlphabetic converts a Latin label to its alphabetic spelling, keeping
// the accidental the label was written with ("Reb" -> "Db").
func ToAlphabetic(label string) (string, error) {
	alpha, ok := latinToAlpha[label]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return alpha, nil
}

// ParseLatin returns the pitch class of a Latin label.
func ParseLatin(label string) (PitchClass, error) {
	alpha, err := ToAlphabetic(label)
	if err != nil {
		return 0, err
	}
	return ParseClass(alpha)
}
