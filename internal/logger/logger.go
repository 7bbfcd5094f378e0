package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Enabled bool   `yaml:"enabled" json:"enabled" env:"FX_LOG" env-default:"false"`
	Level   string `yaml:"level" json:"level" env:"FX_LOG_LEVEL" env-default:"info"`
	Pretty  bool   `yaml:"pretty" json:"pretty" env:"FX_LOG_PRETTY" env-default:"false"`
}

// New returns a stdout logger, or a no-op logger when logging is disabled.
func New(cfg Config) zerolog.Logger {
	if !cfg.Enabled {
		return zerolog.Nop()
	}
	return NewWithWriter(cfg, os.Stdout)
}

func NewWithWriter(cfg Config, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", "exchange-rates").
		Logger()
}
