package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledIsSilent(t *testing.T) {
	l := New(Config{Enabled: false})
	require.Equal(t, zerolog.Disabled, l.GetLevel())
}

func TestNewWithWriter_LevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Enabled: true, Level: "warn"}, &buf)

	l.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	l.Warn().Str("code", "EUR").Msg("no rate")
	require.Contains(t, buf.String(), `"service":"exchange-rates"`)
	require.Contains(t, buf.String(), `"code":"EUR"`)
}

func TestNewWithWriter_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Enabled: true, Level: "loud"}, &buf)
	require.Equal(t, zerolog.InfoLevel, l.GetLevel())
}
