package format

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nihilian/ncheditor/pkg/api"
)

const (
	channelHeader = "id\tname\timportance\tgroup\tdeleted\tblockable\n"
	groupHeader   = "id\tname\tblocked\tchannels\n"
)

// WritePlainRecords writes one tab-aligned row per record. The header is
// chosen by the kind of the first record.
func WritePlainRecords(w io.Writer, recs []api.Record, headers bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range recs {
		if i == 0 && headers {
			if r.Kind() == api.KindGroup {
				_, _ = io.WriteString(tw, groupHeader)
			} else {
				_, _ = io.WriteString(tw, channelHeader)
			}
		}
		_, _ = io.WriteString(tw, row(r))
	}
	return tw.Flush()
}

func row(r api.Record) string {
	switch v := r.(type) {
	case *api.Channel:
		return fmt.Sprintf("%s\t%s\t%d\t%s\t%t\t%t\n",
			esc(v.ID), esc(v.Name), v.Importance, esc(v.Group), v.Deleted, v.BlockableSystem)
	case *api.ChannelGroup:
		return fmt.Sprintf("%s\t%s\t%t\t%d\n", esc(v.ID), esc(v.Name), v.Blocked, len(v.Channels))
	}
	return ""
}

// WritePlainRecord writes every field of r as "key: value".
func WritePlainRecord(w io.Writer, r api.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, p := range pairs(r) {
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", p.k, esc(p.v))
	}
	return tw.Flush()
}
