package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type tableStyles struct {
	header lipgloss.Style
	label  lipgloss.Style
	empty  lipgloss.Style
}

func defaultTableStyles() tableStyles {
	return tableStyles{
		header: lipgloss.NewStyle().Bold(true),
		label:  lipgloss.NewStyle().Faint(true),
		empty:  lipgloss.NewStyle().Faint(true),
	}
}

// renderHuman prints an aligned table. A single record renders as a
// two-column label/value table so scalar-shaped responses stay readable; a
// collection renders as a grid with one row per record.
func renderHuman(w io.Writer, p Projection, opts Options) error {
	s := defaultTableStyles()

	if p.Single {
		return renderLabelValue(w, p.Rows[0], s)
	}

	if len(p.Rows) == 0 {
		header := p.Header()
		if opts.NoHeader || len(header) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, s.header.Render(strings.Join(header, "  ")))
		return err
	}

	return renderGrid(w, p, opts, s)
}

func renderLabelValue(w io.Writer, row Row, s tableStyles) error {
	keys := row.Keys()
	if len(keys) == 0 {
		_, err := fmt.Fprintln(w, s.empty.Render("(no fields)"))
		return err
	}

	width := 0
	for _, key := range keys {
		if kw := lipgloss.Width(key); kw > width {
			width = kw
		}
	}

	for _, key := range keys {
		value, _ := row.Value(key)
		label := s.label.Render(pad(key, width))
		if _, err := fmt.Fprintf(w, "%s  %s\n", label, cellText(value)); err != nil {
			return err
		}
	}
	return nil
}

func renderGrid(w io.Writer, p Projection, opts Options, s tableStyles) error {
	header := p.Header()

	widths := make([]int, len(header))
	for i, key := range header {
		widths[i] = lipgloss.Width(key)
	}

	cells := make([][]string, len(p.Rows))
	for ri, row := range p.Rows {
		cells[ri] = make([]string, len(header))
		for i, key := range header {
			value, ok := row.Value(key)
			if !ok {
				continue
			}
			text := cellText(value)
			cells[ri][i] = text
			if cw := lipgloss.Width(text); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	if !opts.NoHeader {
		parts := make([]string, len(header))
		for i, key := range header {
			parts[i] = pad(key, widths[i])
		}
		if _, err := fmt.Fprintln(w, s.header.Render(strings.TrimRight(strings.Join(parts, "  "), " "))); err != nil {
			return err
		}
	}

	for _, row := range cells {
		parts := make([]string, len(row))
		for i, text := range row {
			parts[i] = pad(text, widths[i])
		}
		line := strings.TrimRight(strings.Join(parts, "  "), " ")
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
