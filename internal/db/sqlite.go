package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nihilian/ncheditor/internal/parcel"
	"github.com/nihilian/ncheditor/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) q(ctx context.Context) querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

func isUnique(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE")
}

// Packages

func (s *sqliteStore) CreatePackage(ctx context.Context, p api.Package) error {
	if p.Name == "" {
		return fmt.Errorf("package name required")
	}
	_, err := s.q(ctx).ExecContext(ctx, `INSERT INTO packages(name, app_id) VALUES(?, ?)`, p.Name, p.AppID)
	if isUnique(err) {
		return fmt.Errorf("package %q: %w", p.Name, ErrConflict)
	}
	return err
}

func (s *sqliteStore) GetPackage(ctx context.Context, name string) (api.Package, error) {
	var p api.Package
	row := s.q(ctx).QueryRowContext(ctx, `SELECT name, app_id FROM packages WHERE name=?`, name)
	if err := row.Scan(&p.Name, &p.AppID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Package{}, fmt.Errorf("package %q: %w", name, ErrNotFound)
		}
		return api.Package{}, err
	}
	return p, nil
}

func (s *sqliteStore) ListPackages(ctx context.Context) ([]api.Package, error) {
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT name, app_id FROM packages ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []api.Package
	for rows.Next() {
		var p api.Package
		if err := rows.Scan(&p.Name, &p.AppID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Channels

func (s *sqliteStore) ListChannels(ctx context.Context, pkg string, user int, includeDeleted bool) ([]*api.Channel, error) {
	if _, err := s.GetPackage(ctx, pkg); err != nil {
		return nil, err
	}
	q := `SELECT data FROM channels WHERE pkg=? AND user_id=?`
	if !includeDeleted {
		q += ` AND deleted=0`
	}
	q += ` ORDER BY seq`
	return s.scanChannels(ctx, q, pkg, user)
}

func (s *sqliteStore) scanChannels(ctx context.Context, q string, args ...any) ([]*api.Channel, error) {
	rows, err := s.q(ctx).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*api.Channel{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		c, err := parcel.UnmarshalChannel(data)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *sqliteStore) GetChannel(ctx context.Context, pkg string, user int, id string) (*api.Channel, error) {
	var data []byte
	row := s.q(ctx).QueryRowContext(ctx, `SELECT data FROM channels WHERE pkg=? AND user_id=? AND id=?`, pkg, user, id)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("channel %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return parcel.UnmarshalChannel(data)
}

func (s *sqliteStore) CreateChannel(ctx context.Context, pkg string, user int, c *api.Channel) error {
	if c.ID == "" {
		return fmt.Errorf("channel id required")
	}
	return inTx(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.GetPackage(ctx, pkg); err != nil {
			return err
		}
		_, err := s.q(ctx).ExecContext(ctx,
			`INSERT INTO channels(pkg, user_id, id, grp, deleted, data) VALUES(?,?,?,?,?,?)`,
			pkg, user, c.ID, c.Group, c.Deleted, parcel.MarshalChannel(c))
		if isUnique(err) {
			return fmt.Errorf("channel %q: %w", c.ID, ErrConflict)
		}
		return err
	})
}

func (s *sqliteStore) UpdateChannelCAS(ctx context.Context, pkg string, user int, c *api.Channel, ifFingerprint string) (*api.Channel, error) {
	err := inTx(ctx, s.db, func(ctx context.Context) error {
		cur, err := s.GetChannel(ctx, pkg, user, c.ID)
		if err != nil {
			return err
		}
		if ifFingerprint != "" && cur.Fingerprint() != ifFingerprint {
			return fmt.Errorf("channel %q: %w", c.ID, ErrConflict)
		}
		_, err = s.q(ctx).ExecContext(ctx,
			`UPDATE channels SET grp=?, deleted=?, data=? WHERE pkg=? AND user_id=? AND id=?`,
			c.Group, c.Deleted, parcel.MarshalChannel(c), pkg, user, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetChannel(ctx, pkg, user, c.ID)
}

// Groups

func (s *sqliteStore) ListGroups(ctx context.Context, pkg string, user int, includeDeleted bool) ([]*api.ChannelGroup, error) {
	if _, err := s.GetPackage(ctx, pkg); err != nil {
		return nil, err
	}
	rows, err := s.q(ctx).QueryContext(ctx, `SELECT data FROM channel_groups WHERE pkg=? AND user_id=? ORDER BY seq`, pkg, user)
	if err != nil {
		return nil, err
	}
	out := []*api.ChannelGroup{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			rows.Close()
			return nil, err
		}
		g, err := parcel.UnmarshalGroup(data)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	for _, g := range out {
		if err := s.attachChannels(ctx, pkg, user, g, includeDeleted); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *sqliteStore) attachChannels(ctx context.Context, pkg string, user int, g *api.ChannelGroup, includeDeleted bool) error {
	q := `SELECT data FROM channels WHERE pkg=? AND user_id=? AND grp=?`
	if !includeDeleted {
		q += ` AND deleted=0`
	}
	q += ` ORDER BY seq`
	chs, err := s.scanChannels(ctx, q, pkg, user, g.ID)
	if err != nil {
		return err
	}
	g.Channels = nil
	for _, c := range chs {
		g.Channels = append(g.Channels, *c)
	}
	return nil
}

func (s *sqliteStore) GetGroup(ctx context.Context, pkg string, user int, id string) (*api.ChannelGroup, error) {
	var data []byte
	row := s.q(ctx).QueryRowContext(ctx, `SELECT data FROM channel_groups WHERE pkg=? AND user_id=? AND id=?`, pkg, user, id)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("group %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	g, err := parcel.UnmarshalGroup(data)
	if err != nil {
		return nil, err
	}
	if err := s.attachChannels(ctx, pkg, user, g, false); err != nil {
		return nil, err
	}
	return g, nil
}

// Channels are stored on their own rows; a group row holds only the
// group's own fields.
func groupRow(g *api.ChannelGroup) []byte {
	bare := *g
	bare.Channels = nil
	return parcel.MarshalGroup(&bare)
}

func (s *sqliteStore) CreateGroup(ctx context.Context, pkg string, user int, g *api.ChannelGroup) error {
	if g.ID == "" {
		return fmt.Errorf("group id required")
	}
	return inTx(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.GetPackage(ctx, pkg); err != nil {
			return err
		}
		_, err := s.q(ctx).ExecContext(ctx,
			`INSERT INTO channel_groups(pkg, user_id, id, data) VALUES(?,?,?,?)`,
			pkg, user, g.ID, groupRow(g))
		if isUnique(err) {
			return fmt.Errorf("group %q: %w", g.ID, ErrConflict)
		}
		return err
	})
}

func (s *sqliteStore) UpdateGroupCAS(ctx context.Context, pkg string, user int, g *api.ChannelGroup, ifFingerprint string) (*api.ChannelGroup, error) {
	err := inTx(ctx, s.db, func(ctx context.Context) error {
		cur, err := s.GetGroup(ctx, pkg, user, g.ID)
		if err != nil {
			return err
		}
		if ifFingerprint != "" && cur.Fingerprint() != ifFingerprint {
			return fmt.Errorf("group %q: %w", g.ID, ErrConflict)
		}
		_, err = s.q(ctx).ExecContext(ctx,
			`UPDATE channel_groups SET data=? WHERE pkg=? AND user_id=? AND id=?`,
			groupRow(g), pkg, user, g.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetGroup(ctx, pkg, user, g.ID)
}

func openSQLite(ctx context.Context, dsn string) (*Store, io.Closer, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, nil, err
	}
	// set WAL mode
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, nil, err
	}
	// enforce foreign keys
	if _, err := dbh.ExecContext(ctx, `PRAGMA foreign_keys=ON;`); err != nil {
		_ = dbh.Close()
		return nil, nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, nil, err
	}
	s := &sqliteStore{db: dbh}
	st := &Store{Packages: s, Channels: s, Groups: s}
	return st, dbh, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS packages (
  name TEXT PRIMARY KEY,
  app_id INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS channels (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  pkg TEXT NOT NULL REFERENCES packages(name) ON DELETE CASCADE,
  user_id INTEGER NOT NULL,
  id TEXT NOT NULL,
  grp TEXT NOT NULL DEFAULT '',
  deleted INTEGER NOT NULL DEFAULT 0,
  data BLOB NOT NULL,
  UNIQUE(pkg, user_id, id)
);
CREATE INDEX IF NOT EXISTS idx_channels_grp ON channels(pkg, user_id, grp);
CREATE TABLE IF NOT EXISTS channel_groups (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  pkg TEXT NOT NULL REFERENCES packages(name) ON DELETE CASCADE,
  user_id INTEGER NOT NULL,
  id TEXT NOT NULL,
  data BLOB NOT NULL,
  UNIQUE(pkg, user_id, id)
);
`)
	return err
}
