package chord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/satindergrewal/pianochords/internal/theory"
)

var (
	ErrUnknownCategory = errors.New("unknown chord category")
	ErrUnknownChord    = errors.New("unknown chord symbol")
)

// Category groups chord shapes by cardinality.
type Category string

const (
	Triads   Category = "triads"
	Tetrads  Category = "tetrads"
	Extended Category = "extended"
)

// DefaultCategory is selected on first load.
const DefaultCategory = Triads

var categoryTitles = map[Category]string{
	Triads:   "Triadi",
	Tetrads:  "Quadriadi",
	Extended: "Accordi Estesi",
}

// Title returns the tab label shown for the category.
func (c Category) Title() string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{Triads, Tetrads, Extended}
}

// ParseCategory validates a category id.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryTitles[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Shape is the untransposed definition of a chord, rooted on C.
type Shape struct {
	Symbol    string
	Name      string
	Category  Category
	Notes     []theory.Pitch
	Intervals string
}

// Root returns the first note of the shape.
func (s Shape) Root() theory.Pitch {
	return s.Notes[0]
}

// Catalog is immutable reference data, ordered within each category.
type Catalog struct {
	shapes map[Category][]Shape
}

// Shapes returns the shapes of a category in display order.
func (c *Catalog) Shapes(cat Category) []Shape {
	return c.shapes[cat]
}

// First returns the first shape of a category.
func (c *Catalog) First(cat Category) (Shape, error) {
	shapes := c.shapes[cat]
	if len(shapes) == 0 {
		return Shape{}, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	return shapes[0], nil
}

// Lookup finds a symbol within a category.
func (c *Catalog) Lookup(cat Category, symbol string) (Shape, error) {
	shapes, ok := c.shapes[cat]
	if !ok {
		return Shape{}, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	for _, s := range shapes {
		if s.Symbol == symbol {
			return s, nil
		}
	}
	return Shape{}, fmt.Errorf("%w: %q in %s", ErrUnknownChord, symbol, cat)
}

// Find looks a symbol up across all categories.
func (c *Catalog) Find(symbol string) (Shape, error) {
	for _, cat := range Categories() {
		if s, err := c.Lookup(cat, symbol); err == nil {
			return s, nil
		}
	}
	return Shape{}, fmt.Errorf("%w: %q", ErrUnknownChord, symbol)
}

type entry struct {
	symbol, name, notes, intervals string
}

func build(cat Category, entries []entry) []Shape {
	shapes := make([]Shape, 0, len(entries))
	for _, e := range entries {
		var notes []theory.Pitch
		for _, n := range strings.Fields(e.notes) {
			notes = append(notes, theory.MustParsePitch(n))
		}
		shapes = append(shapes, Shape{
			Symbol:    e.symbol,
			Name:      e.name,
			Category:  cat,
			Notes:     notes,
			Intervals: e.intervals,
		})
	}
	return shapes
}

// NewCatalog returns the built-in chord catalog.
func NewCatalog() *Catalog {
	return &Catalog{shapes: map[Category][]Shape{
		Triads: build(Triads, []entry{
			{"C", "Do maggiore", "C4 E4 G4", "1 3 5"},
			{"Cm", "Do minore", "C4 D#4 G4", "1 b3 5"},
			{"Caug", "Do aumentato", "C4 E4 G#4", "1 3 #5"},
			{"Cdim", "Do diminuito", "C4 D#4 F#4", "1 b3 b5"},
			{"Csus2", "Do seconda sospesa", "C4 D4 G4", "1 2 5"},
			{"Csus4", "Do quarta sospesa", "C4 F4 G4", "1 4 5"},
		}),
		Tetrads: build(Tetrads, []entry{
			{"C6", "Do sesta", "C4 E4 G4 A4", "1 3 5 6"},
			{"Cm6", "Do minore sesta", "C4 D#4 G4 A4", "1 b3 5 6"},
			{"C7", "Do settima (dominante)", "C4 E4 G4 A#4", "1 3 5 b7"},
			{"Cmaj7", "Do settima maggiore", "C4 E4 G4 B4", "1 3 5 7"},
			{"Cm7", "Do minore settima", "C4 D#4 G4 A#4", "1 b3 5 b7"},
			{"Cm7b5", "Do semidiminuito", "C4 D#4 F#4 A#4", "1 b3 b5 b7"},
			{"Cm(maj7)", "Do minore settima maggiore", "C4 D#4 G4 B4", "1 b3 5 7"},
			{"Cmaj7#5", "Do settima maggiore quinta aumentata", "C4 E4 G#4 B4", "1 3 #5 7"},
			{"C7#5", "Do settima quinta aumentata", "C4 E4 G#4 A#4", "1 3 #5 b7"},
			{"C7b5", "Do settima quinta diminuita", "C4 E4 F#4 A#4", "1 3 b5 b7"},
			{"Cmaj7b5", "Do settima maggiore quinta diminuita", "C4 E4 F#4 B4", "1 3 b5 7"},
			{"Cdim(maj7)", "Do diminuito settima maggiore", "C4 D#4 F#4 B4", "1 b3 b5 7"},
			{"C7sus4", "Do settima quarta sospesa", "C4 F4 G4 A#4", "1 4 5 b7"},
		}),
		Extended: build(Extended, []entry{
			{"C9", "Do nona (dominante)", "C4 E4 G4 A#4 D5", "1 3 5 b7 9"},
			{"Cmaj9", "Do nona maggiore", "C4 E4 G4 B4 D5", "1 3 5 7 9"},
			{"Cm9", "Do minore nona", "C4 D#4 G4 A#4 D5", "1 b3 5 b7 9"},
			{"C11", "Do undicesima (dominante)", "C4 E4 G4 A#4 D5 F5", "1 3 5 b7 9 11"},
			{"Cm11", "Do minore undicesima", "C4 D#4 G4 A#4 D5 F5", "1 b3 5 b7 9 11"},
			{"C13", "Do tredicesima (dominante)", "C4 E4 G4 A#4 D5 A5", "1 3 5 b7 9 13"},
			{"Cmaj13", "Do tredicesima maggiore", "C4 E4 G4 B4 D5 A5", "1 3 5 7 9 13"},
			{"C13sus4", "Do tredicesima sospesa", "C4 F4 G4 A#4 D5 A5", "1 4 5 b7 9 13"},
			{"C7b9", "Do settima nona diminuita", "C4 E4 G4 A#4 C#5", "1 3 5 b7 b9"},
			{"C7#9", "Do settima nona aumentata", "C4 E4 G4 A#4 D#5", "1 3 5 b7 #9"},
			{"C7b9#5", "Do settima nona dim. quinta aum.", "C4 E4 G#4 A#4 C#5", "1 3 #5 b7 b9"},
			{"C7b13", "Do settima tredicesima diminuita", "C4 E4 G4 A#4 G#5", "1 3 5 b7 b13"},
		}),
	}}
}
