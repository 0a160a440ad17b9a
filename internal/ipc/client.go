package ipc

import (
	"context"
	"errors"
	"fmt"

	"github.com/nihilian/ncheditor/internal/ipc/transport"
	"github.com/nihilian/ncheditor/pkg/api"
	"github.com/nihilian/ncheditor/pkg/listslice"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// RemoteError is a failure reported by the daemon.
type RemoteError struct {
	Cmd string
	Msg string
}

func (e *RemoteError) Error() string { return e.Cmd + ": " + e.Msg }

func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Msg == MsgNotFound
	case ErrConflict:
		return e.Msg == MsgConflict
	}
	return false
}

// Request sends a Message to the daemon and waits for a Response.
func Request(ctx context.Context, path string, m Message) (Response, error) {
	return roundTrip(ctx, transport.NewUnixClient(path), m)
}

func roundTrip(ctx context.Context, c transport.Client, m Message) (Response, error) {
	var r Response
	req, err := m.MarshalBinary()
	if err != nil {
		return r, err
	}
	b, err := c.Do(ctx, req)
	if err != nil {
		return r, err
	}
	if err := r.UnmarshalBinary(b); err != nil {
		return r, err
	}
	return r, nil
}

// Client is a typed view over the daemon commands.
type Client struct {
	tr transport.Client
}

// NewClient returns a client dialing the socket at path.
func NewClient(path string) *Client {
	return &Client{tr: transport.NewUnixClient(path)}
}

// NewClientWith returns a client over an arbitrary transport.
func NewClientWith(tr transport.Client) *Client { return &Client{tr: tr} }

// Do sends m and converts a failed Response into a *RemoteError.
func (c *Client) Do(ctx context.Context, m Message) (Response, error) {
	r, err := roundTrip(ctx, c.tr, m)
	if err != nil {
		return r, err
	}
	if !r.OK {
		return r, &RemoteError{Cmd: m.Name, Msg: r.Msg}
	}
	return r, nil
}

// ContinuationPuller redeems continuation handles through the daemon.
type ContinuationPuller struct{ C *Client }

func (p ContinuationPuller) PullContinuation(ctx context.Context, h listslice.Handle) ([]byte, error) {
	r, err := p.C.Do(ctx, Message{Name: CmdContinuationPull, Handle: h})
	if err != nil {
		return nil, err
	}
	return r.Chunk, nil
}

// PackageUID resolves the uid of pkg for user.
func (c *Client) PackageUID(ctx context.Context, pkg string, user int) (int, error) {
	r, err := c.Do(ctx, Message{Name: CmdPackageUID, Package: pkg, User: user})
	if err != nil {
		return 0, err
	}
	return r.UID, nil
}

// CreatePackage registers pkg with the given app id.
func (c *Client) CreatePackage(ctx context.Context, pkg string, appID int) error {
	_, err := c.Do(ctx, Message{Name: CmdPackageCreate, Package: pkg, AppID: appID})
	return err
}

// ListChannels returns every channel of pkg, reassembling the chunked
// transfer the daemon answers with.
func (c *Client) ListChannels(ctx context.Context, pkg string, user int, includeDeleted bool) ([]*api.Channel, error) {
	recs, err := c.list(ctx, Message{Name: CmdChannelList, Package: pkg, User: user, IncludeDeleted: includeDeleted})
	if err != nil {
		return nil, err
	}
	return records[*api.Channel](recs, api.KindChannel)
}

// ListGroups returns every channel group of pkg.
func (c *Client) ListGroups(ctx context.Context, pkg string, user int, includeDeleted bool) ([]*api.ChannelGroup, error) {
	recs, err := c.list(ctx, Message{Name: CmdGroupList, Package: pkg, User: user, IncludeDeleted: includeDeleted})
	if err != nil {
		return nil, err
	}
	return records[*api.ChannelGroup](recs, api.KindGroup)
}

func (c *Client) list(ctx context.Context, m Message) ([]api.Record, error) {
	r, err := c.Do(ctx, m)
	if err != nil {
		return nil, err
	}
	return listslice.Read[api.Record](ctx, r.Chunk, codec, ContinuationPuller{C: c})
}

func records[R api.Record](recs []api.Record, want api.Kind) ([]R, error) {
	out := make([]R, 0, len(recs))
	for i, rec := range recs {
		v, ok := rec.(R)
		if !ok {
			return nil, &listslice.TypeMismatchError{
				Index:    i,
				Expected: listslice.TypeID(want),
				Actual:   codec.TypeOf(rec),
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// GetChannel fetches one channel by id.
func (c *Client) GetChannel(ctx context.Context, pkg string, user int, id string) (*api.Channel, error) {
	r, err := c.Do(ctx, Message{Name: CmdChannelGet, Package: pkg, User: user, ID: id})
	if err != nil {
		return nil, err
	}
	ch, ok := r.Record.(*api.Channel)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected record %T", CmdChannelGet, r.Record)
	}
	return ch, nil
}

// GetGroup fetches one channel group by id, with its channels.
func (c *Client) GetGroup(ctx context.Context, pkg string, user int, id string) (*api.ChannelGroup, error) {
	r, err := c.Do(ctx, Message{Name: CmdGroupGet, Package: pkg, User: user, ID: id})
	if err != nil {
		return nil, err
	}
	g, ok := r.Record.(*api.ChannelGroup)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected record %T", CmdGroupGet, r.Record)
	}
	return g, nil
}

// UpdateChannel stores ch. A non-empty ifFingerprint makes the update
// conditional on the stored channel still matching it.
func (c *Client) UpdateChannel(ctx context.Context, pkg string, user int, ch *api.Channel, ifFingerprint string) (*api.Channel, error) {
	return writeRecord[*api.Channel](ctx, c, Message{Name: CmdChannelUpdate, Package: pkg, User: user, ID: ch.ID, Record: ch, IfFingerprint: ifFingerprint})
}

// UpdateGroup stores g under the same rules as UpdateChannel.
func (c *Client) UpdateGroup(ctx context.Context, pkg string, user int, g *api.ChannelGroup, ifFingerprint string) (*api.ChannelGroup, error) {
	return writeRecord[*api.ChannelGroup](ctx, c, Message{Name: CmdGroupUpdate, Package: pkg, User: user, ID: g.ID, Record: g, IfFingerprint: ifFingerprint})
}

// CreateChannel adds ch to pkg.
func (c *Client) CreateChannel(ctx context.Context, pkg string, user int, ch *api.Channel) (*api.Channel, error) {
	return writeRecord[*api.Channel](ctx, c, Message{Name: CmdChannelCreate, Package: pkg, User: user, ID: ch.ID, Record: ch})
}

// CreateGroup adds g to pkg.
func (c *Client) CreateGroup(ctx context.Context, pkg string, user int, g *api.ChannelGroup) (*api.ChannelGroup, error) {
	return writeRecord[*api.ChannelGroup](ctx, c, Message{Name: CmdGroupCreate, Package: pkg, User: user, ID: g.ID, Record: g})
}

func writeRecord[R api.Record](ctx context.Context, c *Client, m Message) (R, error) {
	var zero R
	r, err := c.Do(ctx, m)
	if err != nil {
		return zero, err
	}
	v, ok := r.Record.(R)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected record %T", m.Name, r.Record)
	}
	return v, nil
}
