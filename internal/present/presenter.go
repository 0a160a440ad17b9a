package present

import (
	"io"

	"github.com/nihilian/ncheditor/internal/present/format"
	"github.com/nihilian/ncheditor/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeYAML
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
}

// ParseMode parses "plain", "pretty", "json" or "yaml".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "plain", "":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "yaml":
		return ModeYAML, true
	default:
		return ModePlain, false
	}
}

func (m Mode) String() string {
	switch m {
	case ModePretty:
		return "pretty"
	case ModeJSON:
		return "json"
	case ModeYAML:
		return "yaml"
	default:
		return "plain"
	}
}

// RenderRecords renders a list of channels or groups according to options.
func RenderRecords(w io.Writer, recs []api.Record, opts Options) error {
	if recs == nil {
		recs = []api.Record{}
	}
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, recs, opts.JSONIndent)
	case ModeYAML:
		return format.WriteYAML(w, recs)
	case ModePretty:
		return format.WritePrettyRecords(w, recs)
	default:
		return format.WritePlainRecords(w, recs, opts.Headers)
	}
}

// RenderRecord renders a single channel or group according to options.
func RenderRecord(w io.Writer, r api.Record, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, r, opts.JSONIndent)
	case ModeYAML:
		return format.WriteYAML(w, r)
	case ModePretty:
		return format.WritePrettyRecord(w, r)
	default:
		return format.WritePlainRecord(w, r)
	}
}

// RenderFields prints the editable key vocabulary. Styled output is only
// used when styled is true.
func RenderFields(w io.Writer, styled bool) error {
	if styled {
		return format.WriteFieldsMarkdown(w, api.ChannelFields, api.GroupFields)
	}
	return format.WriteFieldsPlain(w, api.ChannelFields, api.GroupFields)
}
