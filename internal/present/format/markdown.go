package format

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"

	"github.com/nihilian/ncheditor/pkg/api"
)

const fieldsUsage = "update fields format: key0=value0 key1=value1 ..."

func fieldsMarkdown(channel, group []api.FieldInfo) string {
	var b strings.Builder
	b.WriteString("# Editable fields\n\n`" + fieldsUsage + "`\n")
	table := func(title string, fields []api.FieldInfo) {
		b.WriteString("\n## " + title + "\n\n| key | type | meaning |\n|---|---|---|\n")
		for _, f := range fields {
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", f.Key, f.Type, f.Help)
		}
	}
	table("Channel", channel)
	table("Channel group (-G)", group)
	return b.String()
}

// WriteFieldsMarkdown renders the field tables with glamour.
func WriteFieldsMarkdown(w io.Writer, channel, group []api.FieldInfo) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(fieldsMarkdown(channel, group))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// WriteFieldsPlain writes the field tables without styling.
func WriteFieldsPlain(w io.Writer, channel, group []api.FieldInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, fieldsUsage)
	fmt.Fprintln(tw, "channel keys:")
	for _, f := range channel {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.Key, f.Type, f.Help)
	}
	fmt.Fprintln(tw, "group keys (-G):")
	for _, f := range group {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", f.Key, f.Type, f.Help)
	}
	return tw.Flush()
}
