package present

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nihilian/ncheditor/pkg/api"
)

func sampleRecords() []api.Record {
	a := api.NewChannel("alerts", "Alerts", api.ImportanceHigh)
	a.SetGroup("main")
	b := api.NewChannel("promo", "Promotions\tand offers", api.ImportanceLow)
	return []api.Record{a, b}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"plain": ModePlain, "": ModePlain, "pretty": ModePretty, "json": ModeJSON, "yaml": ModeYAML} {
		m, ok := ParseMode(in)
		require.True(t, ok, in)
		assert.Equal(t, want, m)
	}
	_, ok := ParseMode("tui")
	assert.False(t, ok)
	assert.Equal(t, "yaml", ModeYAML.String())
}

func TestRenderRecordsPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRecords(&buf, sampleRecords(), Options{Mode: ModePlain, Headers: true}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id"))
	assert.Contains(t, lines[1], "alerts")
	assert.Contains(t, lines[1], "main")
	assert.Contains(t, lines[2], `Promotions\tand offers`)
}

func TestRenderRecordsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRecords(&buf, sampleRecords(), Options{Mode: ModeJSON}))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "alerts", got[0]["id"])
	assert.EqualValues(t, api.ImportanceLow, got[1]["importance"])

	buf.Reset()
	require.NoError(t, RenderRecords(&buf, nil, Options{Mode: ModeJSON}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRenderRecordYAML(t *testing.T) {
	g := api.NewChannelGroup("main", "Main")
	g.Channels = []api.Channel{*api.NewChannel("alerts", "Alerts", api.ImportanceHigh)}

	var buf bytes.Buffer
	require.NoError(t, RenderRecord(&buf, g, Options{Mode: ModeYAML}))
	var got struct {
		ID       string `yaml:"id"`
		Channels []struct {
			ID string `yaml:"id"`
		} `yaml:"channels"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "main", got.ID)
	require.Len(t, got.Channels, 1)
	assert.Equal(t, "alerts", got.Channels[0].ID)
}

func TestRenderRecordPlainDetail(t *testing.T) {
	c := api.NewChannel("alerts", "Alerts", api.ImportanceHigh)
	c.SetVibrationPattern([]int64{0, 250, 100})

	var buf bytes.Buffer
	require.NoError(t, RenderRecord(&buf, c, Options{Mode: ModePlain}))
	out := buf.String()
	assert.Contains(t, out, "vibrationPattern:")
	assert.Contains(t, out, "[0,250,100]")
	assert.Contains(t, out, "showBadge:")
}

func TestRenderRecordsPretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRecords(&buf, sampleRecords(), Options{Mode: ModePretty}))
	out := buf.String()
	assert.Contains(t, out, "# 1/2")
	assert.Contains(t, out, "# 2/2")
	assert.Contains(t, out, "alerts")
}

func TestRenderFieldsPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderFields(&buf, false))
	out := buf.String()
	for _, f := range api.ChannelFields {
		assert.Contains(t, out, f.Key)
	}
	assert.Contains(t, out, "blocked")
}
