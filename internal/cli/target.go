package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nihilian/ncheditor/internal/ipc"
	"github.com/nihilian/ncheditor/internal/present"
	"github.com/nihilian/ncheditor/internal/util"
	"github.com/nihilian/ncheditor/internal/wire"
	"github.com/nihilian/ncheditor/pkg/api"
)

const maxSuggestions = 3

// target names the package and, optionally, the channel or group a
// command works on.
type target struct {
	Pkg   string
	ID    string
	Group bool
}

func (t *target) kind() string {
	if t.Group {
		return "channel group"
	}
	return "channel"
}

func addTargetFlags(cmd *cobra.Command, t *target, withID bool) {
	cmd.Flags().StringVar(&t.Pkg, "pkg", "", "package name")
	cmd.Flags().Int("user", 0, "user id (defaults to config user)")
	if withID {
		cmd.Flags().StringVar(&t.ID, "id", "", "channel id, or channel group id with -G")
		cmd.Flags().BoolVarP(&t.Group, "group", "G", false, "treat --id as a channel group id")
		registerIDCompletion(cmd, t)
	}
}

func (t *target) require(needID bool) error {
	var missing []string
	if strings.TrimSpace(t.Pkg) == "" {
		missing = append(missing, "--pkg")
	}
	if needID && strings.TrimSpace(t.ID) == "" {
		missing = append(missing, "--id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required flag(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

func dial() (*ipc.Client, error) {
	sock, err := ipc.SocketPath()
	if err != nil {
		return nil, err
	}
	return ipc.NewClient(sock), nil
}

func outputOptions(app *wire.App, headers bool) (present.Options, error) {
	raw := strings.ToLower(app.Cfg.GetString("output"))
	mode, ok := present.ParseMode(raw)
	if !ok {
		return present.Options{}, fmt.Errorf("invalid --output: %s", raw)
	}
	return present.Options{Mode: mode, JSONIndent: true, Headers: headers}, nil
}

func fetchOne(ctx context.Context, c *ipc.Client, t *target, user int) (api.Record, error) {
	var (
		rec api.Record
		err error
	)
	if t.Group {
		rec, err = c.GetGroup(ctx, t.Pkg, user, t.ID)
	} else {
		rec, err = c.GetChannel(ctx, t.Pkg, user, t.ID)
	}
	if err != nil {
		return nil, suggest(ctx, c, t, user, err)
	}
	return rec, nil
}

func fetchAll(ctx context.Context, c *ipc.Client, t *target, user int, includeDeleted bool) ([]api.Record, error) {
	if t.Group {
		gs, err := c.ListGroups(ctx, t.Pkg, user, includeDeleted)
		if err != nil {
			return nil, err
		}
		out := make([]api.Record, len(gs))
		for i, g := range gs {
			out[i] = g
		}
		return out, nil
	}
	cs, err := c.ListChannels(ctx, t.Pkg, user, includeDeleted)
	if err != nil {
		return nil, err
	}
	out := make([]api.Record, len(cs))
	for i, ch := range cs {
		out[i] = ch
	}
	return out, nil
}

func recordIDs(recs []api.Record) []string {
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		switch v := r.(type) {
		case *api.Channel:
			ids = append(ids, v.ID)
		case *api.ChannelGroup:
			ids = append(ids, v.ID)
		}
	}
	return ids
}

// suggest decorates a not-found error with the closest ids of the package.
func suggest(ctx context.Context, c *ipc.Client, t *target, user int, err error) error {
	if !errors.Is(err, ipc.ErrNotFound) {
		return err
	}
	base := fmt.Errorf("%s %q not found in %s: %w", t.kind(), t.ID, t.Pkg, err)
	recs, lerr := fetchAll(ctx, c, t, user, true)
	if lerr != nil {
		return base
	}
	matches := util.ScoreCompletions(t.ID, recordIDs(recs), maxSuggestions)
	if len(matches) == 0 {
		return base
	}
	quoted := make([]string, len(matches))
	for i, m := range matches {
		quoted[i] = strconv.Quote(m)
	}
	return fmt.Errorf("%s %q not found in %s (did you mean %s?): %w",
		t.kind(), t.ID, t.Pkg, strings.Join(quoted, ", "), err)
}
