package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaded(t *testing.T) *viper.Viper {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	v := viper.New()
	require.NoError(t, Load(context.Background(), v))
	return v
}

func TestLoadDefaults(t *testing.T) {
	v := loaded(t)
	assert.Equal(t, 65536, v.GetInt("ipc.max_txn_bytes"))
	assert.Equal(t, -1, v.GetInt("ipc.inline_count_limit"))
	assert.Equal(t, 64, v.GetInt("ipc.max_pending_transfers"))
	assert.Equal(t, "plain", v.GetString("output"))
	assert.True(t, strings.HasSuffix(ResolveDBPath(v), filepath.Join("ncheditor", "ncheditor.db")))
	assert.NoError(t, CheckConfigValidity(v))
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ncheditor"), 0o700))
	cfg := "output = \"json\"\n[ipc]\nmax_txn_bytes = 4096\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ncheditor", "config.toml"), []byte(cfg), 0o600))
	t.Setenv("NCHEDITOR_IPC_MAX_TXN_BYTES", "8192")

	v := viper.New()
	require.NoError(t, Load(context.Background(), v))
	assert.Equal(t, "json", v.GetString("output"), "file overrides default")
	assert.Equal(t, 8192, v.GetInt("ipc.max_txn_bytes"), "env overrides file")
}

func TestTransferOptions(t *testing.T) {
	v := loaded(t)
	v.Set("ipc.max_txn_bytes", 1000)
	v.Set("ipc.warn_element_ratio", 0.25)

	o := TransferOptions(v)
	assert.Equal(t, 1000, o.MaxBytes)
	assert.Equal(t, 250, o.WarnElementBytes)

	v.Set("ipc.warn_element_ratio", 7)
	assert.Equal(t, 1000, TransferOptions(v).WarnElementBytes)
}

func TestCheckConfigValidityInvalid(t *testing.T) {
	v := viper.New()
	v.Set("data_dir", "")
	v.Set("log.level", "loud")
	v.Set("output", "xml")
	v.Set("user", -2)
	v.Set("ipc.max_txn_bytes", 10)
	v.Set("ipc.warn_element_ratio", 0)
	v.Set("ipc.inline_count_limit", -5)
	v.Set("ipc.max_pending_transfers", 0)

	err := CheckConfigValidity(v)
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"data_dir is required",
		`log.level "loud"`,
		`output "xml"`,
		"user must not be negative",
		"ipc.max_txn_bytes must be at least 64",
		"ipc.warn_element_ratio must be in (0,1]",
		"ipc.inline_count_limit must be -1 or more",
		"ipc.max_pending_transfers must be greater than 0",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestRenderDefaultTOMLParses(t *testing.T) {
	var doc map[string]any
	_, err := toml.Decode(RenderDefaultTOML(), &doc)
	require.NoError(t, err)

	ipc, ok := doc["ipc"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(65536), ipc["max_txn_bytes"])
	assert.Equal(t, 1.0, ipc["warn_element_ratio"])
	assert.Equal(t, "plain", doc["output"])
}

func TestUpdateTOML(t *testing.T) {
	existing := "output = \"yaml\"\nnamespace = \"old\"\n\n[ipc]\nmax_txn_bytes = 2048\n"
	got, changed := UpdateTOML(existing)
	require.True(t, changed)

	assert.Contains(t, got, "# namespace = \"old\"")
	assert.Equal(t, 1, strings.Count(got, "[ipc]"), "existing tables are extended, not repeated")

	var doc map[string]any
	_, err := toml.Decode(got, &doc)
	require.NoError(t, err, got)
	assert.Equal(t, "yaml", doc["output"])
	assert.Equal(t, int64(0), doc["user"])
	ipc := doc["ipc"].(map[string]any)
	assert.Equal(t, int64(2048), ipc["max_txn_bytes"])
	assert.Equal(t, int64(64), ipc["max_pending_transfers"])
	assert.Contains(t, doc, "log")

	again, changed := UpdateTOML(got)
	assert.False(t, changed)
	assert.Equal(t, got, again)
}
