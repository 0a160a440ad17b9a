package daemon

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihilian/ncheditor/internal/ipc"
	"github.com/nihilian/ncheditor/internal/parcel"
	"github.com/nihilian/ncheditor/pkg/api"
	"github.com/nihilian/ncheditor/pkg/listslice"
)

const testPkg = "com.example.app"

func newTestService(t *testing.T, overrides map[string]any) *Service {
	t.Helper()
	app := newTestApp(t, filepath.Join(t.TempDir(), "data"), overrides)
	require.NoError(t, app.OpenServices(context.Background()))
	t.Cleanup(func() { _ = app.Close() })

	s := NewService(app)
	r := s.Handle(context.Background(), ipc.Message{Name: ipc.CmdPackageCreate, Package: testPkg, AppID: 10042})
	require.True(t, r.OK, r.Msg)
	return s
}

func seedChannels(t *testing.T, s *Service, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		c := api.NewChannel(fmt.Sprintf("ch-%02d", i), "Channel", api.ImportanceDefault)
		r := s.Handle(context.Background(), ipc.Message{Name: ipc.CmdChannelCreate, Package: testPkg, Record: c})
		require.True(t, r.OK, r.Msg)
	}
}

func pullAll(t *testing.T, s *Service, first ipc.Response) ([]api.Record, int) {
	t.Helper()
	pulls := 0
	puller := listslice.PullFunc(func(ctx context.Context, h listslice.Handle) ([]byte, error) {
		pulls++
		r := s.Handle(ctx, ipc.Message{Name: ipc.CmdContinuationPull, Handle: h})
		if !r.OK {
			return nil, fmt.Errorf("%s", r.Msg)
		}
		return r.Chunk, nil
	})
	recs, err := listslice.Read[api.Record](context.Background(), first.Chunk, parcel.Codec{}, puller)
	require.NoError(t, err)
	return recs, pulls
}

func TestServicePackageUID(t *testing.T) {
	s := newTestService(t, nil)
	r := s.Handle(context.Background(), ipc.Message{Name: ipc.CmdPackageUID, Package: testPkg, User: 10})
	require.True(t, r.OK)
	assert.Equal(t, 1010042, r.UID)

	r = s.Handle(context.Background(), ipc.Message{Name: ipc.CmdPackageUID, Package: "missing"})
	assert.False(t, r.OK)
	assert.Equal(t, ipc.MsgNotFound, r.Msg)

	r = s.Handle(context.Background(), ipc.Message{Name: ipc.CmdPackageCreate, Package: "x", AppID: 5})
	assert.False(t, r.OK)
}

func TestServiceInlineCountLimitZero(t *testing.T) {
	s := newTestService(t, map[string]any{"ipc.inline_count_limit": 0})
	seedChannels(t, s, 3)

	r := s.Handle(context.Background(), ipc.Message{Name: ipc.CmdChannelList, Package: testPkg})
	require.True(t, r.OK, r.Msg)

	var first listslice.Chunk
	require.NoError(t, first.UnmarshalBinary(r.Chunk))
	assert.Empty(t, first.Elements)
	assert.True(t, first.HasMore)

	recs, pulls := pullAll(t, s, r)
	assert.Len(t, recs, 3)
	assert.Equal(t, 1, pulls, "continuations carry no inline cap")
}

func TestServiceListFitsOneChunk(t *testing.T) {
	s := newTestService(t, nil)
	seedChannels(t, s, 5)

	r := s.Handle(context.Background(), ipc.Message{Name: ipc.CmdChannelList, Package: testPkg})
	require.True(t, r.OK)
	recs, pulls := pullAll(t, s, r)
	assert.Len(t, recs, 5)
	assert.Zero(t, pulls)
}

func TestServiceOversizedChannelStillDelivered(t *testing.T) {
	s := newTestService(t, map[string]any{"ipc.max_txn_bytes": 128})
	big := api.NewChannel("big", "Big", api.ImportanceDefault)
	big.SetDescription(strings.Repeat("d", 400))
	r := s.Handle(context.Background(), ipc.Message{Name: ipc.CmdChannelCreate, Package: testPkg, Record: big})
	require.True(t, r.OK, r.Msg)
	seedChannels(t, s, 2)

	r = s.Handle(context.Background(), ipc.Message{Name: ipc.CmdChannelList, Package: testPkg})
	require.True(t, r.OK)
	recs, _ := pullAll(t, s, r)
	require.Len(t, recs, 3)
	assert.Equal(t, "big", recs[0].(*api.Channel).ID)
}

func TestServiceContinuationSingleUse(t *testing.T) {
	s := newTestService(t, map[string]any{"ipc.inline_count_limit": 0})
	seedChannels(t, s, 1)

	r := s.Handle(context.Background(), ipc.Message{Name: ipc.CmdChannelList, Package: testPkg})
	var first listslice.Chunk
	require.NoError(t, first.UnmarshalBinary(r.Chunk))

	pull := ipc.Message{Name: ipc.CmdContinuationPull, Handle: first.Next}
	assert.True(t, s.Handle(context.Background(), pull).OK)
	again := s.Handle(context.Background(), pull)
	assert.False(t, again.OK)
	assert.Contains(t, again.Msg, "unknown continuation")
}

func TestServiceGroups(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	for _, id := range []string{"work", "home"} {
		r := s.Handle(ctx, ipc.Message{Name: ipc.CmdGroupCreate, Package: testPkg, Record: api.NewChannelGroup(id, id)})
		require.True(t, r.OK, r.Msg)
	}
	c := api.NewChannel("a", "A", api.ImportanceDefault)
	c.SetGroup("work")
	require.True(t, s.Handle(ctx, ipc.Message{Name: ipc.CmdChannelCreate, Package: testPkg, Record: c}).OK)

	r := s.Handle(ctx, ipc.Message{Name: ipc.CmdGroupList, Package: testPkg})
	require.True(t, r.OK)
	recs, _ := pullAll(t, s, r)
	require.Len(t, recs, 2)
	work := recs[0].(*api.ChannelGroup)
	assert.Equal(t, "work", work.ID)
	assert.Len(t, work.Channels, 1)

	r = s.Handle(ctx, ipc.Message{Name: ipc.CmdGroupUpdate, Package: testPkg, ID: "home", Fields: map[string]string{"blocked": "true"}})
	require.True(t, r.OK, r.Msg)
	assert.True(t, r.Record.(*api.ChannelGroup).Blocked)

	r = s.Handle(ctx, ipc.Message{Name: ipc.CmdGroupUpdate, Package: testPkg, ID: "home", Fields: map[string]string{"importance": "1"}})
	assert.False(t, r.OK)
	assert.Contains(t, r.Msg, "unknown field")
}

func TestServiceRejectsMismatchedRecords(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	r := s.Handle(ctx, ipc.Message{Name: ipc.CmdChannelCreate, Package: testPkg, Record: api.NewChannelGroup("g", "G")})
	assert.False(t, r.OK)

	seedChannels(t, s, 1)
	r = s.Handle(ctx, ipc.Message{Name: ipc.CmdChannelUpdate, Package: testPkg, ID: "other", Record: api.NewChannel("ch-00", "x", 3)})
	assert.False(t, r.OK)

	r = s.Handle(ctx, ipc.Message{Name: "channel.delete"})
	assert.False(t, r.OK)
	assert.Contains(t, r.Msg, "unknown command")
}
