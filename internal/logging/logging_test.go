package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
		ok   bool
	}{
		{"", zerolog.InfoLevel, false},
		{"DEBUG", zerolog.DebugLevel, true},
		{" warning ", zerolog.WarnLevel, true},
		{"off", zerolog.Disabled, true},
		{"loud", zerolog.InfoLevel, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestBuildFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig(ProfileTest)
	cfg.Out = &buf
	cfg.Level = zerolog.WarnLevel
	l := Build(cfg)

	l.Info().Msg("quiet")
	l.Warn().Int("index", 3).Msg("oversized list element")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "oversized list element")
	assert.Contains(t, out, "index=3")
}

func TestNewEnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	l := New(ProfileRuntime, "debug", "test")
	assert.Equal(t, zerolog.ErrorLevel, l.GetLevel())
}
