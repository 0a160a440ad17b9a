package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nihilian/ncheditor/internal/config"
	"github.com/nihilian/ncheditor/internal/db"
	"github.com/nihilian/ncheditor/internal/ipc"
	"github.com/nihilian/ncheditor/internal/ipc/transport"
	"github.com/nihilian/ncheditor/internal/parcel"
	"github.com/nihilian/ncheditor/internal/wire"
	"github.com/nihilian/ncheditor/pkg/api"
	"github.com/nihilian/ncheditor/pkg/listslice"
)

// Service answers IPC commands against the store.
type Service struct {
	store       *db.Store
	transfers   *listslice.Registry
	opts        listslice.Options
	inlineLimit int
	log         zerolog.Logger
}

// NewService builds a Service from an app whose services are open.
func NewService(app *wire.App) *Service {
	logger := app.Log.With().Str("component", "daemon").Logger()
	opts := config.TransferOptions(app.Cfg)
	opts.Logger = &logger
	return &Service{
		store:       app.Store,
		transfers:   app.Transfers,
		opts:        opts,
		inlineLimit: app.Cfg.GetInt("ipc.inline_count_limit"),
		log:         logger,
	}
}

// responseSink delivers the first chunk of a list reply by placing it in
// the IPC response.
type responseSink struct{ resp *ipc.Response }

func (s responseSink) SendInitial(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(payload) > transport.MaxFrameBytes {
		return fmt.Errorf("%w: %d", transport.ErrFrameTooLarge, len(payload))
	}
	s.resp.OK = true
	s.resp.Chunk = payload
	return nil
}

func fail(err error) ipc.Response {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return ipc.Response{OK: false, Msg: ipc.MsgNotFound}
	case errors.Is(err, db.ErrConflict):
		return ipc.Response{OK: false, Msg: ipc.MsgConflict}
	}
	return ipc.Response{OK: false, Msg: err.Error()}
}

// Handle dispatches one command.
func (s *Service) Handle(ctx context.Context, m ipc.Message) ipc.Response {
	l := s.log.With().Str("cmd", m.Name).Str("pkg", m.Package).Int("user", m.User).Logger()
	l.Debug().Str("id", m.ID).Msg("ipc request")

	resp, err := s.dispatch(ctx, m)
	if err != nil {
		l.Info().Err(err).Str("id", m.ID).Msg("ipc request failed")
		return fail(err)
	}
	return resp
}

func (s *Service) dispatch(ctx context.Context, m ipc.Message) (ipc.Response, error) {
	switch m.Name {
	case ipc.CmdPackageUID:
		p, err := s.store.Packages.GetPackage(ctx, m.Package)
		if err != nil {
			return ipc.Response{}, err
		}
		return ipc.Response{OK: true, UID: api.UID(m.User, p.AppID)}, nil
	case ipc.CmdPackageCreate:
		return s.createPackage(ctx, m)
	case ipc.CmdChannelList:
		chs, err := s.store.Channels.ListChannels(ctx, m.Package, m.User, m.IncludeDeleted)
		if err != nil {
			return ipc.Response{}, err
		}
		recs := make([]api.Record, len(chs))
		for i, c := range chs {
			recs[i] = c
		}
		return s.sendList(ctx, m, recs)
	case ipc.CmdGroupList:
		gs, err := s.store.Groups.ListGroups(ctx, m.Package, m.User, m.IncludeDeleted)
		if err != nil {
			return ipc.Response{}, err
		}
		recs := make([]api.Record, len(gs))
		for i, g := range gs {
			recs[i] = g
		}
		return s.sendList(ctx, m, recs)
	case ipc.CmdContinuationPull:
		chunk, err := s.transfers.Redeem(m.Handle)
		if err != nil {
			return ipc.Response{}, err
		}
		b, err := chunk.MarshalBinary()
		if err != nil {
			return ipc.Response{}, err
		}
		s.log.Debug().Str("handle", m.Handle.String()).Int("elements", len(chunk.Elements)).Bool("has_more", chunk.HasMore).Msg("continuation served")
		return ipc.Response{OK: true, Chunk: b}, nil
	case ipc.CmdChannelGet:
		c, err := s.store.Channels.GetChannel(ctx, m.Package, m.User, m.ID)
		if err != nil {
			return ipc.Response{}, err
		}
		return ipc.Response{OK: true, Record: c}, nil
	case ipc.CmdGroupGet:
		g, err := s.store.Groups.GetGroup(ctx, m.Package, m.User, m.ID)
		if err != nil {
			return ipc.Response{}, err
		}
		return ipc.Response{OK: true, Record: g}, nil
	case ipc.CmdChannelCreate:
		c, ok := m.Record.(*api.Channel)
		if !ok {
			return ipc.Response{}, fmt.Errorf("channel record required")
		}
		c.Normalize()
		if err := s.store.Channels.CreateChannel(ctx, m.Package, m.User, c); err != nil {
			return ipc.Response{}, err
		}
		s.log.Info().Str("pkg", m.Package).Str("id", c.ID).Msg("created channel")
		return s.dispatch(ctx, ipc.Message{Name: ipc.CmdChannelGet, Package: m.Package, User: m.User, ID: c.ID})
	case ipc.CmdGroupCreate:
		g, ok := m.Record.(*api.ChannelGroup)
		if !ok {
			return ipc.Response{}, fmt.Errorf("group record required")
		}
		g.Normalize()
		if err := s.store.Groups.CreateGroup(ctx, m.Package, m.User, g); err != nil {
			return ipc.Response{}, err
		}
		s.log.Info().Str("pkg", m.Package).Str("id", g.ID).Msg("created group")
		return s.dispatch(ctx, ipc.Message{Name: ipc.CmdGroupGet, Package: m.Package, User: m.User, ID: g.ID})
	case ipc.CmdChannelUpdate:
		return s.updateChannel(ctx, m)
	case ipc.CmdGroupUpdate:
		return s.updateGroup(ctx, m)
	default:
		s.log.Warn().Str("cmd", m.Name).Msg("unknown IPC cmd")
		return ipc.Response{}, fmt.Errorf("unknown command %q", m.Name)
	}
}

// sendList answers a list command with the first chunk of a transfer; the
// rest is served through continuation.pull.
func (s *Service) sendList(ctx context.Context, m ipc.Message, recs []api.Record) (ipc.Response, error) {
	var resp ipc.Response
	t := listslice.New(recs, parcel.Codec{})
	if s.inlineLimit >= 0 {
		t.SetInlineCountLimit(s.inlineLimit)
	}
	res, err := t.Send(ctx, responseSink{resp: &resp}, s.transfers, s.opts)
	if err != nil {
		return ipc.Response{}, err
	}
	s.log.Debug().
		Str("cmd", m.Name).
		Int("total", len(recs)).
		Int("inline", len(res.Chunk.Elements)).
		Bool("has_more", res.Chunk.HasMore).
		Int("bytes", len(res.Payload)).
		Msg("list reply")
	return resp, nil
}

func (s *Service) createPackage(ctx context.Context, m ipc.Message) (ipc.Response, error) {
	appID := m.AppID
	if appID == 0 {
		pkgs, err := s.store.Packages.ListPackages(ctx)
		if err != nil {
			return ipc.Response{}, err
		}
		appID = api.FirstApplicationUID
		for _, p := range pkgs {
			if p.AppID >= appID {
				appID = p.AppID + 1
			}
		}
	}
	if appID < api.FirstApplicationUID || appID > api.LastApplicationUID {
		return ipc.Response{}, fmt.Errorf("app id %d outside [%d,%d]", appID, api.FirstApplicationUID, api.LastApplicationUID)
	}
	if err := s.store.Packages.CreatePackage(ctx, api.Package{Name: m.Package, AppID: appID}); err != nil {
		return ipc.Response{}, err
	}
	s.log.Info().Str("pkg", m.Package).Int("app_id", appID).Msg("created package")
	return ipc.Response{OK: true, UID: api.UID(m.User, appID)}, nil
}

// updateChannel stores m.Record, or applies m.Fields to the stored channel
// when no record is sent.
func (s *Service) updateChannel(ctx context.Context, m ipc.Message) (ipc.Response, error) {
	var c *api.Channel
	ifFP := m.IfFingerprint
	switch rec := m.Record.(type) {
	case *api.Channel:
		c = rec
		c.Normalize()
		if m.ID != "" && m.ID != c.ID {
			return ipc.Response{}, fmt.Errorf("id %q does not match record %q", m.ID, c.ID)
		}
	case nil:
		cur, err := s.store.Channels.GetChannel(ctx, m.Package, m.User, m.ID)
		if err != nil {
			return ipc.Response{}, err
		}
		if ifFP == "" {
			ifFP = cur.Fingerprint()
		}
		if err := api.ApplyChannelFields(cur, m.Fields); err != nil {
			return ipc.Response{}, err
		}
		c = cur
	default:
		return ipc.Response{}, fmt.Errorf("channel record required, got %s", rec.Kind())
	}
	out, err := s.store.Channels.UpdateChannelCAS(ctx, m.Package, m.User, c, ifFP)
	if err != nil {
		return ipc.Response{}, err
	}
	s.log.Info().Str("pkg", m.Package).Str("id", out.ID).Msg("updated channel")
	return ipc.Response{OK: true, Record: out}, nil
}

func (s *Service) updateGroup(ctx context.Context, m ipc.Message) (ipc.Response, error) {
	var g *api.ChannelGroup
	ifFP := m.IfFingerprint
	switch rec := m.Record.(type) {
	case *api.ChannelGroup:
		g = rec
		g.Normalize()
		if m.ID != "" && m.ID != g.ID {
			return ipc.Response{}, fmt.Errorf("id %q does not match record %q", m.ID, g.ID)
		}
	case nil:
		cur, err := s.store.Groups.GetGroup(ctx, m.Package, m.User, m.ID)
		if err != nil {
			return ipc.Response{}, err
		}
		if ifFP == "" {
			ifFP = cur.Fingerprint()
		}
		if err := api.ApplyGroupFields(cur, m.Fields); err != nil {
			return ipc.Response{}, err
		}
		g = cur
	default:
		return ipc.Response{}, fmt.Errorf("group record required, got %s", rec.Kind())
	}
	out, err := s.store.Groups.UpdateGroupCAS(ctx, m.Package, m.User, g, ifFP)
	if err != nil {
		return ipc.Response{}, err
	}
	s.log.Info().Str("pkg", m.Package).Str("id", out.ID).Msg("updated group")
	return ipc.Response{OK: true, Record: out}, nil
}
