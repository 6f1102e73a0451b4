// Package session holds the user's current selection and routes playback
// requests to the synthesizer.
package session

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/satindergrewal/pianochords/internal/chord"
	"github.com/satindergrewal/pianochords/internal/synth"
	"github.com/satindergrewal/pianochords/internal/theory"
)

// ErrNoSynth is returned by playback calls on a display-only session.
var ErrNoSynth = errors.New("session has no synthesizer")

// View is a snapshot of the selection as the UI renders it.
type View struct {
	Category      chord.Category `json:"category"`
	CategoryTitle string         `json:"categoryTitle"`
	Root          string         `json:"root"`
	BaseSymbol    string         `json:"baseSymbol"`
	Symbol        string         `json:"symbol"`
	Name          string         `json:"name"`
	Intervals     string         `json:"intervals"`
	Notes         []string       `json:"notes"`
	LatinNotes    string         `json:"latinNotes"`
	Fallback      bool           `json:"fallback,omitempty"`
	Busy          bool           `json:"busy"`

	Display chord.Display `json:"-"`
}

type Option func(*Session)

func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithKeyboard(kb chord.Keyboard) Option {
	return func(s *Session) { s.kb = kb }
}

func WithCatalog(c *chord.Catalog) Option {
	return func(s *Session) { s.catalog = c }
}

type Session struct {
	mu       sync.Mutex
	catalog  *chord.Catalog
	kb       chord.Keyboard
	category chord.Category
	shape    chord.Shape
	root     string
	display  chord.Display

	synth *synth.Synthesizer
	log   *log.Logger

	subMu  sync.Mutex
	subs   map[int]func(View)
	nextID int
}

// New starts on the first chord of the default category, rooted on Do.
func New(sy *synth.Synthesizer, opts ...Option) (*Session, error) {
	s := &Session{
		synth:    sy,
		category: chord.DefaultCategory,
		root:     chord.NaturalRoot,
		subs:     make(map[int]func(View)),
	}
	for _, o := range opts {
		o(s)
	}
	if s.catalog == nil {
		s.catalog = chord.NewCatalog()
	}
	if s.kb == nil {
		s.kb = chord.StandardKeyboard()
	}
	if s.log == nil {
		s.log = log.Default().WithPrefix("session")
	}

	first, err := s.catalog.First(s.category)
	if err != nil {
		return nil, err
	}
	s.shape = first
	if err := s.refit(); err != nil {
		return nil, err
	}
	if sy != nil {
		sy.Gate().OnIdle(s.notify)
	}
	return s, nil
}

func (s *Session) Catalog() *chord.Catalog  { return s.catalog }
func (s *Session) Keyboard() chord.Keyboard { return s.kb }

// refit recomputes the display from the current selection. Caller holds mu.
func (s *Session) refit() error {
	d, err := chord.FitRoot(s.shape, s.root, s.kb)
	if err != nil {
		return err
	}
	s.display = d
	return nil
}

// SelectCategory switches category and selects its first chord.
func (s *Session) SelectCategory(name string) error {
	cat, err := chord.ParseCategory(name)
	if err != nil {
		return err
	}
	first, err := s.catalog.First(cat)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.category, s.shape = cat, first
	err = s.refit()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.log.Debug("category selected", "category", cat, "chord", first.Symbol)
	s.notify()
	return nil
}

// SelectChord picks a chord by its untransposed symbol within the current
// category.
func (s *Session) SelectChord(symbol string) error {
	s.mu.Lock()
	shape, err := s.catalog.Lookup(s.category, symbol)
	if err == nil {
		s.shape = shape
		err = s.refit()
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.log.Debug("chord selected", "chord", symbol)
	s.notify()
	return nil
}

// SelectRoot changes the Latin root label the chord is transposed to.
func (s *Session) SelectRoot(label string) error {
	if _, err := theory.ParseLatin(label); err != nil {
		return err
	}
	s.mu.Lock()
	prev := s.root
	s.root = label
	err := s.refit()
	if err != nil {
		s.root = prev
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.log.Debug("root selected", "root", label)
	s.notify()
	return nil
}

func (s *Session) View() View {
	s.mu.Lock()
	d := s.display
	cat := s.category
	s.mu.Unlock()

	return View{
		Category:      cat,
		CategoryTitle: cat.Title(),
		Root:          d.Root,
		BaseSymbol:    d.Shape.Symbol,
		Symbol:        d.Symbol(),
		Name:          d.Name(),
		Intervals:     d.Shape.Intervals,
		Notes:         d.NoteNames(),
		LatinNotes:    d.LatinNotes(),
		Fallback:      d.Fallback,
		Busy:          s.Busy(),
		Display:       d,
	}
}

func (s *Session) Busy() bool {
	return s.synth != nil && s.synth.Busy()
}

// PlayChord sounds the selected chord as currently displayed. It returns
// synth.ErrBusy while the previous chord still holds the gate.
func (s *Session) PlayChord() error {
	if s.synth == nil {
		return ErrNoSynth
	}
	s.mu.Lock()
	notes := append([]theory.Pitch(nil), s.display.Notes...)
	s.mu.Unlock()

	if err := s.synth.PlayChord(notes); err != nil {
		return err
	}
	s.notify()
	return nil
}

// PreviewNote parses text such as "F#3" and sounds it.
func (s *Session) PreviewNote(text string) error {
	p, err := theory.ParsePitch(text)
	if err != nil {
		return err
	}
	if s.synth == nil {
		return ErrNoSynth
	}
	return s.synth.PreviewNote(p)
}

// Subscribe registers fn to receive a View after every change. The
// returned func removes it.
func (s *Session) Subscribe(fn func(View)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Session) notify() {
	s.subMu.Lock()
	fns := make([]func(View), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	if len(fns) == 0 {
		return
	}

	v := s.View()
	for _, fn := range fns {
		fn(v)
	}
}
