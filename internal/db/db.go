package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nihilian/ncheditor/pkg/api"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// PackageRepo stores installed packages.
type PackageRepo interface {
	CreatePackage(ctx context.Context, p api.Package) error
	GetPackage(ctx context.Context, name string) (api.Package, error)
	ListPackages(ctx context.Context) ([]api.Package, error)
}

// ChannelRepo stores channels per package and user, in creation order.
type ChannelRepo interface {
	ListChannels(ctx context.Context, pkg string, user int, includeDeleted bool) ([]*api.Channel, error)
	GetChannel(ctx context.Context, pkg string, user int, id string) (*api.Channel, error)
	CreateChannel(ctx context.Context, pkg string, user int, c *api.Channel) error
	// UpdateChannelCAS replaces a channel. A non-empty ifFingerprint must
	// match the stored channel or ErrConflict is returned.
	UpdateChannelCAS(ctx context.Context, pkg string, user int, c *api.Channel, ifFingerprint string) (*api.Channel, error)
}

// GroupRepo stores channel groups. Returned groups carry their channels.
type GroupRepo interface {
	ListGroups(ctx context.Context, pkg string, user int, includeDeleted bool) ([]*api.ChannelGroup, error)
	GetGroup(ctx context.Context, pkg string, user int, id string) (*api.ChannelGroup, error)
	CreateGroup(ctx context.Context, pkg string, user int, g *api.ChannelGroup) error
	UpdateGroupCAS(ctx context.Context, pkg string, user int, g *api.ChannelGroup, ifFingerprint string) (*api.ChannelGroup, error)
}

// Store aggregates the repositories backed by one database.
type Store struct {
	Packages PackageRepo
	Channels ChannelRepo
	Groups   GroupRepo

	closer io.Closer
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Open returns a Store for url. Only sqlite:// is supported.
func Open(ctx context.Context, url string) (*Store, error) {
	if !strings.HasPrefix(url, "sqlite://") {
		return nil, fmt.Errorf("db: unsupported url %q", url)
	}
	st, closer, err := openSQLite(ctx, url)
	if err != nil {
		return nil, err
	}
	st.closer = closer
	return st, nil
}
