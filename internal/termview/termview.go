// Package termview draws a chord and its keyboard for the terminal.
package termview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/satindergrewal/pianochords/internal/chord"
	"github.com/satindergrewal/pianochords/internal/session"
)

// keyWidth is the column width of one white key.
const keyWidth = 5

// Theme defines the color scheme.
type Theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
	Hit     lipgloss.Color
	Ivory   lipgloss.Color
	Ebony   lipgloss.Color
}

var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Hit:     lipgloss.Color("#ffb000"),
	Ivory:   lipgloss.Color("#f5f5f0"),
	Ebony:   lipgloss.Color("#202020"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Help     lipgloss.Style
	Panel    lipgloss.Style
	White    lipgloss.Style
	Black    lipgloss.Style
	HitWhite lipgloss.Style
	HitBlack lipgloss.Style
}

func NewStyles(t Theme) Styles {
	key := lipgloss.NewStyle().Width(keyWidth).Align(lipgloss.Center)
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:    lipgloss.NewStyle().Foreground(t.Dim).Width(11),
		Value:    lipgloss.NewStyle(),
		Help:     lipgloss.NewStyle().Foreground(t.Dim),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
		White:    key.Copy().Background(t.Ivory).Foreground(t.Ebony),
		Black:    key.Copy().Background(t.Ebony).Foreground(t.Ivory),
		HitWhite: key.Copy().Background(t.Hit).Foreground(t.Ebony).Bold(true),
		HitBlack: key.Copy().Background(t.Hit).Foreground(t.Ebony).Bold(true),
	}
}

// Render draws v with the default theme.
func Render(v session.View, kb chord.Keyboard) string {
	return NewStyles(DefaultTheme).Render(v, kb)
}

// Render stacks the info panel above the keyboard.
func (s Styles) Render(v session.View, kb chord.Keyboard) string {
	return lipgloss.JoinVertical(lipgloss.Left, s.Info(v), s.Keyboard(v.Display, kb))
}

// Info renders the chord's symbol, name, notes and intervals.
func (s Styles) Info(v session.View) string {
	row := func(label, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, s.Label.Render(label), s.Value.Render(value))
	}
	lines := []string{
		s.Title.Render(v.Symbol),
		row("Nome", v.Name),
		row("Note", v.LatinNotes),
		row("Intervalli", v.Intervals),
		row("Categoria", v.CategoryTitle),
	}
	if v.Fallback {
		lines = append(lines, s.Help.Render("fuori tastiera: note trasposte senza adattamento"))
	}
	return s.Panel.Render(strings.Join(lines, "\n"))
}

// Keyboard renders two rows: black keys offset half a key above the white
// keys. Chord tones show their Latin label; other keys are blank.
func (s Styles) Keyboard(d chord.Display, kb chord.Keyboard) string {
	var top, bottom []string
	top = append(top, strings.Repeat(" ", keyWidth/2+1))

	for i, k := range kb {
		if k.Black {
			continue
		}
		bottom = append(bottom, s.key(d, k))

		// The black key after this white one, if any, straddles the gap.
		if i+1 < len(kb) && kb[i+1].Black {
			top = append(top, s.key(d, kb[i+1]))
		} else if i+1 < len(kb) {
			top = append(top, strings.Repeat(" ", keyWidth))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, top...),
		lipgloss.JoinHorizontal(lipgloss.Top, bottom...),
	)
}

func (s Styles) key(d chord.Display, k chord.Key) string {
	hit := d.Contains(k.Pitch)
	label := ""
	if hit {
		label = k.Pitch.Class.Latin()
	}
	switch {
	case hit && k.Black:
		return s.HitBlack.Render(label)
	case hit:
		return s.HitWhite.Render(label)
	case k.Black:
		return s.Black.Render(label)
	default:
		return s.White.Render(label)
	}
}

// Catalog lists every chord of a category transposed to root.
func (s Styles) Catalog(cat *chord.Catalog, category chord.Category, root string, kb chord.Keyboard) (string, error) {
	lines := []string{s.Title.Render(category.Title())}
	for _, shape := range cat.Shapes(category) {
		d, err := chord.FitRoot(shape, root, kb)
		if err != nil {
			return "", err
		}
		sym := lipgloss.NewStyle().Width(12).Render(d.Symbol())
		lines = append(lines, "  "+sym+d.Name()+s.Help.Render("  "+d.LatinNotes()))
	}
	return strings.Join(lines, "\n"), nil
}
