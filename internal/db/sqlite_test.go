package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihilian/ncheditor/pkg/api"
)

func setupTestDB(t *testing.T) (*Store, context.Context) {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Packages.CreatePackage(ctx, api.Package{Name: "com.example.app", AppID: 10042}))
	return store, ctx
}

const pkg = "com.example.app"

func TestOpen_UnsupportedURL(t *testing.T) {
	_, err := Open(context.Background(), "postgres://localhost/db")
	assert.Error(t, err)
}

func TestPackages(t *testing.T) {
	store, ctx := setupTestDB(t)

	p, err := store.Packages.GetPackage(ctx, pkg)
	require.NoError(t, err)
	assert.Equal(t, 10042, p.AppID)

	err = store.Packages.CreatePackage(ctx, api.Package{Name: pkg, AppID: 1})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.Packages.GetPackage(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Packages.CreatePackage(ctx, api.Package{Name: "a.first", AppID: 10001}))
	all, err := store.Packages.ListPackages(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a.first", all[0].Name)
}

func TestChannels_CreateListOrder(t *testing.T) {
	store, ctx := setupTestDB(t)
	repo := store.Channels

	for i := 0; i < 5; i++ {
		c := api.NewChannel(fmt.Sprintf("ch-%d", 4-i), "n", api.ImportanceDefault)
		c.Deleted = i == 2
		require.NoError(t, repo.CreateChannel(ctx, pkg, 0, c))
	}

	live, err := repo.ListChannels(ctx, pkg, 0, false)
	require.NoError(t, err)
	require.Len(t, live, 4)
	assert.Equal(t, "ch-4", live[0].ID, "creation order is preserved")

	all, err := repo.ListChannels(ctx, pkg, 0, true)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	other, err := repo.ListChannels(ctx, pkg, 10, true)
	require.NoError(t, err)
	assert.Empty(t, other, "channels are scoped per user")

	_, err = repo.ListChannels(ctx, "missing", 0, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChannels_CreateErrors(t *testing.T) {
	store, ctx := setupTestDB(t)
	repo := store.Channels

	c := api.NewChannel("alerts", "Alerts", api.ImportanceHigh)
	require.NoError(t, repo.CreateChannel(ctx, pkg, 0, c))
	assert.ErrorIs(t, repo.CreateChannel(ctx, pkg, 0, c), ErrConflict)
	assert.ErrorIs(t, repo.CreateChannel(ctx, "missing", 0, c), ErrNotFound)
	assert.Error(t, repo.CreateChannel(ctx, pkg, 0, &api.Channel{}))
}

func TestUpdateChannelCAS(t *testing.T) {
	store, ctx := setupTestDB(t)
	repo := store.Channels

	c := api.NewChannel("alerts", "Alerts", api.ImportanceHigh)
	require.NoError(t, repo.CreateChannel(ctx, pkg, 0, c))

	got, err := repo.GetChannel(ctx, pkg, 0, "alerts")
	require.NoError(t, err)
	fp := got.Fingerprint()

	t.Run("matching fingerprint updates", func(t *testing.T) {
		got.Name = "Renamed"
		updated, err := repo.UpdateChannelCAS(ctx, pkg, 0, got, fp)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
	})

	t.Run("stale fingerprint conflicts", func(t *testing.T) {
		got.Name = "Again"
		_, err := repo.UpdateChannelCAS(ctx, pkg, 0, got, fp)
		assert.ErrorIs(t, err, ErrConflict)

		cur, err := repo.GetChannel(ctx, pkg, 0, "alerts")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", cur.Name)
	})

	t.Run("empty fingerprint is unconditional", func(t *testing.T) {
		updated, err := repo.UpdateChannelCAS(ctx, pkg, 0, got, "")
		require.NoError(t, err)
		assert.Equal(t, "Again", updated.Name)
	})

	t.Run("missing channel", func(t *testing.T) {
		_, err := repo.UpdateChannelCAS(ctx, pkg, 0, api.NewChannel("nope", "n", 3), "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestGroups_CarryChannels(t *testing.T) {
	store, ctx := setupTestDB(t)

	require.NoError(t, store.Groups.CreateGroup(ctx, pkg, 0, api.NewChannelGroup("work", "Work")))
	require.NoError(t, store.Groups.CreateGroup(ctx, pkg, 0, api.NewChannelGroup("home", "Home")))

	a := api.NewChannel("a", "A", api.ImportanceDefault)
	a.SetGroup("work")
	b := api.NewChannel("b", "B", api.ImportanceDefault)
	b.SetGroup("work")
	b.Deleted = true
	require.NoError(t, store.Channels.CreateChannel(ctx, pkg, 0, a))
	require.NoError(t, store.Channels.CreateChannel(ctx, pkg, 0, b))

	g, err := store.Groups.GetGroup(ctx, pkg, 0, "work")
	require.NoError(t, err)
	require.Len(t, g.Channels, 1)
	assert.Equal(t, "a", g.Channels[0].ID)

	groups, err := store.Groups.ListGroups(ctx, pkg, 0, true)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "work", groups[0].ID)
	assert.Len(t, groups[0].Channels, 2)
	assert.Empty(t, groups[1].Channels)

	assert.ErrorIs(t, store.Groups.CreateGroup(ctx, pkg, 0, api.NewChannelGroup("work", "W")), ErrConflict)
	_, err = store.Groups.GetGroup(ctx, pkg, 0, "none")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateGroupCAS(t *testing.T) {
	store, ctx := setupTestDB(t)
	require.NoError(t, store.Groups.CreateGroup(ctx, pkg, 0, api.NewChannelGroup("work", "Work")))

	g, err := store.Groups.GetGroup(ctx, pkg, 0, "work")
	require.NoError(t, err)
	fp := g.Fingerprint()

	// a channel joining the group changes its fingerprint
	c := api.NewChannel("a", "A", api.ImportanceDefault)
	c.SetGroup("work")
	require.NoError(t, store.Channels.CreateChannel(ctx, pkg, 0, c))

	g.Blocked = true
	_, err = store.Groups.UpdateGroupCAS(ctx, pkg, 0, g, fp)
	assert.ErrorIs(t, err, ErrConflict)

	fresh, err := store.Groups.GetGroup(ctx, pkg, 0, "work")
	require.NoError(t, err)
	freshFP := fresh.Fingerprint()
	fresh.Blocked = true
	updated, err := store.Groups.UpdateGroupCAS(ctx, pkg, 0, fresh, freshFP)
	require.NoError(t, err)
	assert.True(t, updated.Blocked)
	assert.Len(t, updated.Channels, 1)
}

func TestWithTxReusesTransaction(t *testing.T) {
	store, ctx := setupTestDB(t)
	s := store.Channels.(*sqliteStore)

	tx, err := s.db.BeginTx(ctx, nil)
	require.NoError(t, err)
	txCtx := WithTx(ctx, tx)
	require.NoError(t, s.CreateChannel(txCtx, pkg, 0, api.NewChannel("tx", "T", 3)))
	require.NoError(t, tx.Rollback())

	_, err = s.GetChannel(ctx, pkg, 0, "tx")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, TxFromContext(ctx))
}
