package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nihilian/ncheditor/pkg/api"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("57"))
	keyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	emptyStyle   = lipgloss.NewStyle().Faint(true)
)

// WritePrettyRecords writes each record under a "# i/n" heading.
func WritePrettyRecords(w io.Writer, recs []api.Record) error {
	for i, r := range recs {
		if _, err := fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("# %d/%d", i+1, len(recs)))); err != nil {
			return err
		}
		if err := WritePrettyRecord(w, r); err != nil {
			return err
		}
	}
	return nil
}

// WritePrettyRecord writes r as an aligned key/value block.
func WritePrettyRecord(w io.Writer, r api.Record) error {
	ps := pairs(r)
	width := 0
	for _, p := range ps {
		if n := lipgloss.Width(p.k); n > width {
			width = n
		}
	}
	var b strings.Builder
	for _, p := range ps {
		key := keyStyle.Render(p.k + strings.Repeat(" ", width-lipgloss.Width(p.k)))
		val := valueStyle.Render(p.v)
		if p.v == "" {
			val = emptyStyle.Render("-")
		}
		b.WriteString("  " + key + "  " + val + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
